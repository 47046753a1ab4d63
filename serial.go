// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Serial transport to the sensor module
package main

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// How long one port read may wait before handing control back to the tick
const serialReadTimeout = 20 * time.Millisecond

// Upper bound on bytes pulled off the wire in one drain, so a runaway
// device can't stall the tick
const serialDrainLimit = 16 * 1024

// SerialTransport is the byte-oriented, line-delimited link to the device.
// Reads are short-timeout and buffered so the ingestion tick never blocks;
// partial lines are kept across ticks until their terminator arrives.
type SerialTransport struct {
	port     serial.Port
	portName string
	partial  []byte
	queued   []string
	closed   bool
}

// FindSensorPort auto-detects the device port by USB description, falling
// back to the configured candidate names
func FindSensorPort(candidates []string) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("can't enumerate serial ports: %v", err)
	}

	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		product := strings.ToLower(p.Product)
		if strings.Contains(product, "arduino") || strings.Contains(product, "usb") {
			return p.Name, nil
		}
	}

	for _, p := range ports {
		for _, candidate := range candidates {
			if p.Name == candidate {
				return p.Name, nil
			}
		}
	}

	return "", fmt.Errorf("no sensor module found among %d ports", len(ports))
}

// ConnectSerial opens the device port at 8N1 framing
func ConnectSerial(portName string, baud int) (*SerialTransport, error) {

	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("can't open %s: %v", portName, err)
	}

	err = port.SetReadTimeout(serialReadTimeout)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("can't set read timeout on %s: %v", portName, err)
	}

	return &SerialTransport{port: port, portName: portName}, nil
}

// PortName gets the connected port's name
func (t *SerialTransport) PortName() string {
	return t.portName
}

// ReadLines drains whatever the device has buffered and returns up to max
// complete lines.  A zero-byte read means the wire is idle for now; lines
// beyond max stay queued for the next tick.
func (t *SerialTransport) ReadLines(max int) ([]string, error) {

	buf := make([]byte, 1024)
	drained := 0
	for drained < serialDrainLimit {
		n, err := t.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("serial read on %s: %v", t.portName, err)
		}
		if n == 0 {
			break
		}
		drained += n
		t.partial = append(t.partial, buf[:n]...)
	}

	// Split off every complete line received so far
	for {
		i := bytes.IndexByte(t.partial, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(t.partial[:i]), "\r")
		t.partial = t.partial[i+1:]

		// The firmware occasionally emits garbage bytes at boot
		line = strings.ToValidUTF8(line, "")
		if line != "" {
			t.queued = append(t.queued, line)
		}
	}

	if max > len(t.queued) {
		max = len(t.queued)
	}
	lines := t.queued[:max:max]
	t.queued = t.queued[max:]
	return lines, nil
}

// Reset power-cycles the microcontroller by toggling DTR, waits out the
// bootloader settle time, then discards everything buffered before the
// restart
func (t *SerialTransport) Reset() error {

	err := t.port.SetDTR(false)
	if err != nil {
		return fmt.Errorf("reset %s: %v", t.portName, err)
	}
	time.Sleep(ResetPulseWidth)

	err = t.port.SetDTR(true)
	if err != nil {
		return fmt.Errorf("reset %s: %v", t.portName, err)
	}
	time.Sleep(ResetSettleDelay)

	return t.ClearInput()
}

// ClearInput discards pending device output, both on the wire and in the
// transport's own buffers
func (t *SerialTransport) ClearInput() error {
	t.partial = nil
	t.queued = nil
	err := t.port.ResetInputBuffer()
	if err != nil {
		return fmt.Errorf("clear input on %s: %v", t.portName, err)
	}
	return nil
}

// Close releases the port; safe to call more than once
func (t *SerialTransport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.port.Close()
}
