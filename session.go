// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Per-session ingestion state and the tick function
package main

import (
	"fmt"
	"strings"
	"time"
)

// LineSource is the transport capability the tick drains
type LineSource interface {
	ReadLines(max int) ([]string, error)
}

// SamplePublisher is an optional live sink for accepted samples
type SamplePublisher interface {
	PublishSample(s Sample)
}

// SessionState owns every mutable accumulator of one ingestion session:
// parser, filter, buffers, reset policy, counters and the last accepted
// value per channel.  All of it is touched only from Tick, which the
// surrounding loop runs at a fixed cadence; no locking is required by
// design.
type SessionState struct {
	config    *ServiceConfig
	dep       Deployment
	id        string
	parser    *LineParser
	filter    *ValidityFilter
	buffers   *SampleBuffers
	policy    *ResetPolicy
	recorder  *SessionRecorder
	publisher SamplePublisher
	source    LineSource

	started    time.Time
	lastValues map[string]float64

	packetCount  int
	cleanCount   int
	unrecognized int
	anomalyCount int
	outOfRange   int

	lastPacket time.Time
	rate       float64

	anomalyNote string
	rangeNote   string

	recorderFailed bool
	now            func() time.Time
}

// NewSessionState wires the pipeline for one session.  recorder and
// publisher may be nil.
func NewSessionState(config *ServiceConfig, dep Deployment, id string,
	source LineSource, resetter Resetter,
	recorder *SessionRecorder, publisher SamplePublisher) *SessionState {

	s := &SessionState{
		config:     config,
		dep:        dep,
		id:         id,
		parser:     NewLineParser(dep),
		filter:     NewValidityFilter(dep, config.ErrorStreakThreshold),
		buffers:    NewSampleBuffers(dep, config.WindowSize, config.CleanPerChannel),
		policy:     NewResetPolicy(resetter, config.MaxResets, config.MinResetInterval()),
		recorder:   recorder,
		publisher:  publisher,
		source:     source,
		lastValues: map[string]float64{},
		now:        time.Now,
	}
	s.started = s.now()
	return s
}

// Tick performs one bounded unit of ingestion work: drain the currently
// buffered input up to the per-tick cap and fold each line into state.
// The only error it returns is a transport error, which the outer loop
// answers by tearing the session down and reconnecting.
func (s *SessionState) Tick() error {

	lines, err := s.source.ReadLines(s.config.MaxLinesPerTick)
	if err != nil {
		return err
	}

	for _, line := range lines {
		s.processLine(line)
	}

	return nil
}

// processLine classifies one line and dispatches on its kind.  Unrecognized
// lines are expected noise from heterogeneous firmware and are dropped
// silently, counted only.
func (s *SessionState) processLine(line string) {

	parsed := s.parser.Parse(line)

	switch parsed.Kind {

	case LineUnrecognized:
		s.unrecognized++
		statUnrecognized.Inc()

	case LineInfo:
		// The device reporting normality clears the anomaly banner
		s.anomalyNote = ""
		SessionLog(fmt.Sprintf("device: %s\n", parsed.Text))

	case LineError:
		SessionLog(fmt.Sprintf("device error: %s\n", parsed.Text))

	case LineSideband:
		// Latched by the parser; it rides along on the next record

	case LineTelemetry:
		s.processRecord(parsed.Values)
	}
}

// processRecord folds one telemetry record into the session
func (s *SessionState) processRecord(values map[string]float64) {

	now := s.now()
	s.packetCount++
	statPackets.Inc()

	if !s.lastPacket.IsZero() {
		dt := now.Sub(s.lastPacket).Seconds()
		if dt > 0 {
			s.rate = 0.7*s.rate + 0.3*(1.0/dt)
		}
	}
	s.lastPacket = now

	sample := Sample{
		Elapsed: now.Sub(s.started).Seconds(),
		When:    now,
		Values:  values,
	}

	// Check every channel in the record against the previous sample's
	// value set before any of it is updated
	var anomalies []Anomaly
	var rangeErrs []string
	valid := map[string]bool{}

	for _, c := range s.dep.Channels {
		value, present := values[c.Name]
		if !present {
			continue
		}

		previous, known := s.lastValues[c.Name]
		if a, is := CheckAnomaly(c, value, previous, known); is {
			a.Elapsed = sample.Elapsed
			anomalies = append(anomalies, a)
			s.anomalyCount++
			statAnomalies.Inc()
			SessionLog(fmt.Sprintf("[ANOMALY] %s\n", a.String()))
		}

		valid[c.Name] = s.filter.Observe(c.Name, value)
		if !valid[c.Name] {
			rangeErrs = append(rangeErrs, strings.ToUpper(c.Name))
			s.outOfRange++
			statOutOfRange.Inc()
			SessionLog(fmt.Sprintf("[OUT OF RANGE] %s: %.1f%s not in %s (streak %d)\n",
				strings.ToUpper(c.Name), value, c.Unit,
				s.filter.RangeText(c.Name), s.filter.Streak(c.Name)))
		}
	}

	for name, value := range values {
		s.lastValues[name] = value
	}

	// Raw always; clean gated on validity
	update := s.buffers.Ingest(sample, valid)
	if update.CleanAccepted {
		s.cleanCount++
		statAccepted.Inc()
	}

	if s.recorder != nil {
		err := s.recorder.Append(sample)
		if err != nil && !s.recorderFailed {
			s.recorderFailed = true
			SessionLog(fmt.Sprintf("recorder: %s\n", ErrorString(err)))
		}
	}

	if s.publisher != nil {
		s.publisher.PublishSample(sample)
	}

	if len(rangeErrs) > 0 {
		s.rangeNote = "OUT OF RANGE: " + strings.Join(rangeErrs, ", ")
	} else if update.CleanAccepted {
		s.rangeNote = ""
	}

	if len(anomalies) > 0 {
		s.handleAnomalies(anomalies)
	}
}

// handleAnomalies runs the reset policy for an anomaly-bearing sample
func (s *SessionState) handleAnomalies(anomalies []Anomaly) {

	var names []string
	for _, a := range anomalies {
		names = append(names, strings.ToUpper(a.Channel))
	}
	affected := strings.Join(names, ", ")

	switch s.policy.Trigger("anomaly on " + affected) {

	case ResetIssued:
		statResets.Inc()
		// Baselines from before the restart would re-trigger anomalies
		// against the freshly booted device
		s.lastValues = map[string]float64{}
		s.anomalyNote = fmt.Sprintf("ANOMALY: %s - device reset (%d/%d)",
			affected, s.policy.ResetCount(), s.config.MaxResets)

	case ResetSuppressed:
		statResetsSuppressed.Inc()
		s.anomalyNote = fmt.Sprintf("ANOMALY: %s", affected)

	case ResetRefusedExhausted:
		s.anomalyNote = fmt.Sprintf("ANOMALY: %s - reset budget spent", affected)
	}
}

// ForceReset issues a console-requested reset through the same policy
// guards as an anomaly trigger
func (s *SessionState) ForceReset() {
	if s.policy.Trigger("console request") == ResetIssued {
		statResets.Inc()
		s.lastValues = map[string]float64{}
	}
}

// Elapsed gets the session age in seconds
func (s *SessionState) Elapsed() float64 {
	return s.now().Sub(s.started).Seconds()
}
