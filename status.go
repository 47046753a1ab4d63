// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Per-tick status snapshot for the visualization side
package main

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// StatsSummary is a JSON-safe rendering of RunningStats
type StatsSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// ChannelSeries carries both views of one channel
type ChannelSeries struct {
	Name       string       `json:"name"`
	Unit       string       `json:"unit"`
	Raw        []Point      `json:"raw"`
	Clean      []Point      `json:"clean"`
	RawStats   StatsSummary `json:"raw_stats"`
	CleanStats StatsSummary `json:"clean_stats"`
}

// ViewSnapshot is everything a renderer needs for one frame.  It is an
// immutable copy: the tick loop builds a fresh one after each tick and
// publishes it, so readers never touch live pipeline state.
type ViewSnapshot struct {
	Deployment    string          `json:"deployment"`
	SessionID     string          `json:"session_id"`
	Port          string          `json:"port,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	Elapsed       string          `json:"elapsed"`
	Packets       int             `json:"packets"`
	CleanSamples  int             `json:"clean_samples"`
	Unrecognized  int             `json:"unrecognized_lines"`
	OutOfRange    int             `json:"out_of_range_readings"`
	Anomalies     int             `json:"anomalies"`
	Rate          float64         `json:"rate_hz"`
	Resets        int             `json:"resets"`
	ResetState    string          `json:"reset_state"`
	Alerts        []string        `json:"alerts,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	Notices       []string        `json:"notices,omitempty"`
	CleanFallback bool            `json:"clean_fallback"`
	Channels      []ChannelSeries `json:"channels"`
	MQTT          string          `json:"mqtt,omitempty"`
}

func summarize(stats *RunningStats) StatsSummary {
	if stats.Count == 0 {
		return StatsSummary{}
	}
	return StatsSummary{
		Count: stats.Count,
		Min:   stats.Min,
		Max:   stats.Max,
		Avg:   stats.Avg(),
	}
}

// Snapshot builds the current frame.  Severity tiers: persistent sensor
// errors and reset exhaustion always surface at the top; anomaly-triggered
// resets below them; plain out-of-range warnings lowest.
func (s *SessionState) Snapshot() ViewSnapshot {

	snap := ViewSnapshot{
		Deployment:    s.dep.Name,
		SessionID:     s.id,
		StartedAt:     s.started,
		Elapsed:       FormatElapsed(s.Elapsed()),
		Packets:       s.packetCount,
		CleanSamples:  s.cleanCount,
		Unrecognized:  s.unrecognized,
		OutOfRange:    s.outOfRange,
		Anomalies:     s.anomalyCount,
		Rate:          math.Round(s.rate*100) / 100,
		Resets:        s.policy.ResetCount(),
		ResetState:    s.policy.State().String(),
		CleanFallback: s.buffers.CleanSparse(),
	}

	if persistent := s.filter.PersistentErrors(); len(persistent) > 0 {
		snap.Alerts = append(snap.Alerts,
			"SENSOR ERROR: "+strings.ToUpper(strings.Join(persistent, ", "))+" - check sensor/wiring")
	}
	if s.policy.State() == ResetExhausted {
		snap.Alerts = append(snap.Alerts,
			fmt.Sprintf("MAX RESETS REACHED (%d) - device presumed faulty", s.config.MaxResets))
	}
	if s.anomalyNote != "" {
		snap.Warnings = append(snap.Warnings, s.anomalyNote)
	}
	if s.rangeNote != "" {
		snap.Notices = append(snap.Notices, s.rangeNote)
	}

	for _, c := range s.dep.Channels {
		snap.Channels = append(snap.Channels, ChannelSeries{
			Name:       c.Name,
			Unit:       c.Unit,
			Raw:        s.buffers.Raw(c.Name).Points(),
			Clean:      s.buffers.Clean(c.Name).Points(),
			RawStats:   summarize(s.buffers.RawStats(c.Name)),
			CleanStats: summarize(s.buffers.CleanStats(c.Name)),
		})
	}

	return snap
}

// StatsText renders the clean statistics as a console table
func (s *SessionState) StatsText() string {

	var b strings.Builder
	fmt.Fprintf(&b, "session %s  packets %d  clean %d  resets %d  rate %.1f Hz\n",
		s.id, s.packetCount, s.cleanCount, s.policy.ResetCount(), s.rate)

	for _, c := range s.dep.Channels {
		stats := s.buffers.CleanStats(c.Name)
		if stats.Count == 0 {
			fmt.Fprintf(&b, "  %-10s no valid data\n", c.Name)
			continue
		}
		fmt.Fprintf(&b, "  %-10s min %.2f  max %.2f  avg %.2f  n=%d %s\n",
			c.Name, stats.Min, stats.Max, stats.Avg(), stats.Count, c.Unit)
	}

	return b.String()
}
