// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Ground station entry point
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Main service entry point
func main() {

	configFile := flag.String("config", "", "YAML configuration file")
	portFlag := flag.String("port", "", "serial port (auto-detected when empty)")
	deploymentFlag := flag.String("deployment", "", "sensor module preset (bme280, lora, mq2, vegfire)")
	baudFlag := flag.Int("baud", 0, "serial baud rate")
	httpFlag := flag.String("http", "", "status/metrics listen address")
	flag.Parse()

	config, err := LoadServiceConfig(*configFile)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	if *portFlag != "" {
		config.Port = *portFlag
	}
	if *deploymentFlag != "" {
		config.Deployment = *deploymentFlag
	}
	if *baudFlag != 0 {
		config.Baud = *baudFlag
	}
	if *httpFlag != "" {
		config.HTTPAddress = *httpFlag
	}

	dep, err := DeploymentByName(config.Deployment, &config)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	err = os.MkdirAll(config.DataDirectory, 0777)
	if err != nil {
		fmt.Printf("can't create data directory %s: %v\n", config.DataDirectory, err)
		os.Exit(1)
	}

	// Init the status and metrics side
	MetricsInit()
	go HTTPStatusHandler(config.HTTPAddress)

	// Watch for console commands and termination signals
	commands := make(chan string, 4)
	go inputHandler(commands)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Run sessions until asked to quit, reconnecting from scratch after
	// any transport failure
	for {

		quit, err := runSession(&config, dep, commands, stop)
		if quit {
			return
		}

		if err != nil {
			SessionLog(fmt.Sprintf("*** session failed: %s\n", ErrorString(err)))
		}
		statReconnects.Inc()
		SessionLog(fmt.Sprintf("reconnecting in %v\n", ReconnectDelay))

		select {
		case <-stop:
			return
		case <-time.After(ReconnectDelay):
		}

	}

}

// runSession owns one serial connection from open to deterministic
// teardown.  It returns quit=true when the operator asked to stop; any
// error means the transport died and the caller should reconnect.
func runSession(config *ServiceConfig, dep Deployment, commands <-chan string, stop <-chan os.Signal) (quit bool, err error) {

	portName := config.Port
	if portName == "" {
		portName, err = FindSensorPort(config.PortCandidates)
		if err != nil {
			return false, err
		}
	}

	transport, err := ConnectSerial(portName, config.Baud)
	if err != nil {
		return false, err
	}
	defer transport.Close()

	// Opening the port restarts the sketch on most Arduino boards; wait
	// out the boot banner and start from a clean buffer
	time.Sleep(ResetSettleDelay)
	transport.ClearInput()

	sessionID := uuid.NewString()[:8]
	base := filepath.Join(config.DataDirectory, fmt.Sprintf("%s_%s", dep.Name, sessionID))
	SessionLogInit(base + ".log")
	SessionLog(fmt.Sprintf("*** SESSION %s STARTED on %s (%s)\n", sessionID, portName, dep.Name))

	recorder, err := NewSessionRecorder(base+".csv", dep.Channels)
	if err != nil {
		return false, err
	}
	defer recorder.Close()

	session := NewSessionState(config, dep, sessionID, transport, transport, recorder, nil)

	if config.MQTTBroker != "" {
		publisher := NewMqttPublisher(config.MQTTBroker, sessionID, config.MQTTTopicRoot, dep.Name)
		defer publisher.Close()
		session.publisher = publisher
	}

	defer func() {
		summaryErr := WriteSessionSummary(base+"_summary.txt", session)
		if summaryErr != nil {
			SessionLog(fmt.Sprintf("summary: %s\n", ErrorString(summaryErr)))
		}
		SessionLog(fmt.Sprintf("*** SESSION %s ENDED (%d packets, %d clean)\n",
			sessionID, session.packetCount, session.cleanCount))
	}()

	ticker := time.NewTicker(config.TickInterval())
	defer ticker.Stop()

	for {
		select {

		case <-stop:
			return true, nil

		case command := <-commands:
			switch command {
			case cmdQuit:
				return true, nil
			case cmdReset:
				session.ForceReset()
			case cmdStats:
				fmt.Print(session.StatsText())
			}

		case <-ticker.C:
			err = session.Tick()
			if err != nil {
				return false, err
			}

			snap := session.Snapshot()
			snap.Port = transport.PortName()
			if publisher, is := session.publisher.(*MqttPublisher); is {
				snap.MQTT = publisher.Status()
			}
			PublishSnapshot(snap)
		}
	}

}
