// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Implausible-jump detection between consecutive accepted readings
package main

import (
	"fmt"
	"math"
)

// Anomaly records one implausibly large jump on a channel
type Anomaly struct {
	Channel   string  `json:"channel"`
	Elapsed   float64 `json:"elapsed"`
	Previous  float64 `json:"previous"`
	Value     float64 `json:"value"`
	Delta     float64 `json:"delta"`
	Threshold float64 `json:"threshold"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s: %.1f -> %.1f (delta %.1f, threshold %.1f)",
		a.Channel, a.Previous, a.Value, a.Delta, a.Threshold)
}

// CheckAnomaly flags a reading whose change from the previous accepted value
// exceeds the channel's threshold.  The first reading after unknown or
// post-reset state never flags: there is no history to compare against.
// The caller owns the previous-value bookkeeping and must update it only
// after every channel in the current sample has been checked.
func CheckAnomaly(c Channel, value float64, previous float64, previousKnown bool) (Anomaly, bool) {
	if c.MaxDelta <= 0 {
		return Anomaly{}, false
	}
	if !previousKnown || math.IsNaN(previous) || math.IsNaN(value) {
		return Anomaly{}, false
	}
	delta := math.Abs(value - previous)
	if delta <= c.MaxDelta {
		return Anomaly{}, false
	}
	return Anomaly{
		Channel:   c.Name,
		Previous:  previous,
		Value:     value,
		Delta:     delta,
		Threshold: c.MaxDelta,
	}, true
}
