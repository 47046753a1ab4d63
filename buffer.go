// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Raw and clean sample buffering
package main

import (
	"math"
)

// SampleBuffers maintains the raw and clean views of every channel: rolling
// windows plus running statistics for each.  The raw view takes every
// sample, forward-filling absent channels so the series stay time-aligned.
// The clean view is gated on validity: by default a sample enters it only
// when every channel present in that sample is valid, so one malfunctioning
// sensor does not pollute the series used for reporting.  PerChannel
// switches to independent per-channel gating.
type SampleBuffers struct {
	PerChannel bool

	channels   []Channel
	raw        map[string]*Window
	clean      map[string]*Window
	rawStats   map[string]*RunningStats
	cleanStats map[string]*RunningStats
}

// ViewUpdate reports what one ingested sample did to the views
type ViewUpdate struct {
	CleanAccepted bool
	Invalid       []string
}

// NewSampleBuffers allocates windows for the deployment's channels
func NewSampleBuffers(d Deployment, capacity int, perChannel bool) *SampleBuffers {
	b := &SampleBuffers{
		PerChannel: perChannel,
		channels:   d.Channels,
		raw:        map[string]*Window{},
		clean:      map[string]*Window{},
		rawStats:   map[string]*RunningStats{},
		cleanStats: map[string]*RunningStats{},
	}
	for _, c := range d.Channels {
		b.raw[c.Name] = NewWindow(capacity)
		b.clean[c.Name] = NewWindow(capacity)
		b.rawStats[c.Name] = NewRunningStats()
		b.cleanStats[c.Name] = NewRunningStats()
	}
	return b
}

// Ingest folds one sample into both views.  valid carries the validity
// verdict for each channel present in the sample.
func (b *SampleBuffers) Ingest(s Sample, valid map[string]bool) ViewUpdate {
	update := ViewUpdate{CleanAccepted: true}

	for channel, ok := range valid {
		if !ok {
			update.CleanAccepted = false
			update.Invalid = append(update.Invalid, channel)
		}
	}

	for _, c := range b.channels {

		// Raw view: every channel gets a point per sample, carrying the
		// previous value forward when the line didn't include it
		value, present := s.Values[c.Name]
		if !present {
			if last, has := b.raw[c.Name].Last(); has {
				value = last.V
			} else {
				value = math.NaN()
			}
		}
		b.raw[c.Name].Push(s.Elapsed, value)
		if present {
			b.rawStats[c.Name].Update(value)
		}

		if !present {
			continue
		}

		// Clean view
		accept := update.CleanAccepted
		if b.PerChannel {
			accept = valid[c.Name]
		}
		if accept {
			b.clean[c.Name].Push(s.Elapsed, value)
			b.cleanStats[c.Name].Update(value)
		}
	}

	return update
}

// Raw gets the raw window for a channel
func (b *SampleBuffers) Raw(channel string) *Window {
	return b.raw[channel]
}

// Clean gets the clean window for a channel
func (b *SampleBuffers) Clean(channel string) *Window {
	return b.clean[channel]
}

// RawStats gets the raw running statistics for a channel
func (b *SampleBuffers) RawStats(channel string) *RunningStats {
	return b.rawStats[channel]
}

// CleanStats gets the clean running statistics for a channel
func (b *SampleBuffers) CleanStats(channel string) *RunningStats {
	return b.cleanStats[channel]
}

// CleanSparse reports whether the clean view is still too thin to plot on
// its own, in which case consumers should fall back to the raw view
func (b *SampleBuffers) CleanSparse() bool {
	most := 0
	for _, w := range b.clean {
		if w.Len() > most {
			most = w.Len()
		}
	}
	return most < 2
}
