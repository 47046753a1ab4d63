// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Physical-range validity filtering
package main

import (
	"math"
	"sort"
)

// ValidityFilter classifies readings against each channel's static bounds
// and tracks consecutive-invalid streaks.  A channel whose streak reaches
// the alert threshold enters persistent-error state until one valid
// reading clears it.
type ValidityFilter struct {
	channels   map[string]Channel
	threshold  int
	streak     map[string]int
	persistent map[string]bool
}

// NewValidityFilter builds a filter over the deployment's channels
func NewValidityFilter(d Deployment, streakThreshold int) *ValidityFilter {
	if streakThreshold <= 0 {
		streakThreshold = DefaultErrorStreakThreshold
	}
	f := &ValidityFilter{
		channels:   map[string]Channel{},
		threshold:  streakThreshold,
		streak:     map[string]int{},
		persistent: map[string]bool{},
	}
	for _, c := range d.Channels {
		f.channels[c.Name] = c
	}
	return f
}

// IsValid reports whether a value lies within the channel's configured
// range.  NaN is always invalid.  Pure: no streak side effects.
func (f *ValidityFilter) IsValid(channel string, value float64) bool {
	if math.IsNaN(value) {
		return false
	}
	c, known := f.channels[channel]
	if !known {
		return true
	}
	return value >= c.Min && value <= c.Max
}

// Observe classifies a reading and updates the channel's invalid streak.
// Any valid reading resets the streak and clears persistent-error state
// immediately.
func (f *ValidityFilter) Observe(channel string, value float64) bool {
	if f.IsValid(channel, value) {
		f.streak[channel] = 0
		delete(f.persistent, channel)
		return true
	}
	f.streak[channel]++
	if f.streak[channel] >= f.threshold {
		f.persistent[channel] = true
	}
	return false
}

// Streak gets the current consecutive-invalid count for a channel
func (f *ValidityFilter) Streak(channel string) int {
	return f.streak[channel]
}

// PersistentErrors lists the channels currently in persistent-error state
func (f *ValidityFilter) PersistentErrors() []string {
	var names []string
	for name := range f.persistent {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RangeText describes a channel's valid range for warnings
func (f *ValidityFilter) RangeText(channel string) string {
	c, known := f.channels[channel]
	if !known {
		return ""
	}
	return formatRange(c.Min, c.Max)
}
