// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	lines []string
}

func (s *fakeSource) ReadLines(max int) ([]string, error) {
	n := len(s.lines)
	if n > max {
		n = max
	}
	out := s.lines[:n]
	s.lines = s.lines[n:]
	return out, nil
}

type capturePublisher struct {
	samples []Sample
}

func (p *capturePublisher) PublishSample(s Sample) {
	p.samples = append(p.samples, s)
}

func newTestSession(t *testing.T, lines []string) (*SessionState, *fakeResetter, *capturePublisher) {
	config := DefaultServiceConfig()
	dep := bme280Deployment(t)
	transport := &fakeResetter{}
	publisher := &capturePublisher{}
	source := &fakeSource{lines: lines}
	return NewSessionState(&config, dep, "test0001", source, transport, nil, publisher),
		transport, publisher
}

func drain(t *testing.T, s *SessionState) {
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Tick())
	}
}

func TestSessionAnomalyTriggersReset(t *testing.T) {
	s, transport, publisher := newTestSession(t, []string{
		"temp=20.0",
		"temp=21.0",
		"temp=95.0", // out of range and an implausible jump
		"temp=21.5",
	})
	drain(t, s)

	assert.Equal(t, 4, s.packetCount)
	assert.Equal(t, 1, s.anomalyCount)
	assert.Equal(t, 1, s.outOfRange)
	assert.Equal(t, 1, transport.calls)

	// Every record reaches the raw view and the publisher
	assert.Equal(t, 4, s.buffers.Raw("temp").Len())
	assert.Len(t, publisher.samples, 4)

	// The spurious reading never reaches the clean view
	points := s.buffers.Clean("temp").Points()
	require.Len(t, points, 3)
	assert.Equal(t, 20.0, points[0].V)
	assert.Equal(t, 21.0, points[1].V)
	assert.Equal(t, 21.5, points[2].V)
	assert.Equal(t, 3, s.cleanCount)

	// A single spike is not a persistent sensor error
	assert.Empty(t, s.filter.PersistentErrors())

	// The post-reset reading compares against no baseline, so 95 -> 21.5
	// did not flag a second anomaly
	assert.Equal(t, 1, s.anomalyCount)
}

func TestSessionUnrecognizedLinesAreCounted(t *testing.T) {
	s, transport, _ := newTestSession(t, []string{
		"Booting v1.2...",
		"temp=21.0",
		"garbage###",
	})
	drain(t, s)

	assert.Equal(t, 1, s.packetCount)
	assert.Equal(t, 2, s.unrecognized)
	assert.Equal(t, 0, transport.calls)
}

func TestSessionDeviceInfoClearsAnomalyNote(t *testing.T) {
	s, _, _ := newTestSession(t, []string{
		"temp=20.0",
		"temp=80.0",
		"info=sensor recovered",
	})
	drain(t, s)

	assert.Equal(t, 1, s.anomalyCount)
	assert.Empty(t, s.anomalyNote)
}

func TestSessionSnapshot(t *testing.T) {
	s, _, _ := newTestSession(t, []string{
		"temp=20.0,hum=44.0",
		"temp=20.5,hum=120.0", // hum out of range gates the whole sample
	})
	drain(t, s)

	snap := s.Snapshot()
	assert.Equal(t, "bme280", snap.Deployment)
	assert.Equal(t, "test0001", snap.SessionID)
	assert.Equal(t, 2, snap.Packets)
	assert.Equal(t, 1, snap.CleanSamples)
	assert.Equal(t, 1, snap.OutOfRange)
	assert.Equal(t, "idle", snap.ResetState)
	require.Len(t, snap.Channels, 4)
	assert.Equal(t, "temp", snap.Channels[0].Name)
	assert.Len(t, snap.Channels[0].Raw, 2)
	assert.Len(t, snap.Channels[0].Clean, 1)
	require.Len(t, snap.Notices, 1)
	assert.Contains(t, snap.Notices[0], "HUM")
}

func TestSessionPersistentErrorSurfacesAlert(t *testing.T) {
	lines := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		lines = append(lines, "hum=150.0")
	}
	s, transport, _ := newTestSession(t, lines)
	drain(t, s)

	assert.Equal(t, []string{"hum"}, s.filter.PersistentErrors())

	snap := s.Snapshot()
	require.NotEmpty(t, snap.Alerts)
	assert.Contains(t, snap.Alerts[0], "HUM")

	// Out-of-range alone never resets the device
	assert.Equal(t, 0, transport.calls)
}

func TestSessionForceReset(t *testing.T) {
	s, transport, _ := newTestSession(t, []string{"temp=20.0"})
	drain(t, s)

	s.ForceReset()
	assert.Equal(t, 1, transport.calls)
	assert.Empty(t, s.lastValues)
}
