// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Telemetry sample type
package main

import (
	"time"
)

// Sample is one telemetry instant, immutable once produced.  Elapsed is
// seconds since session start on the monotonic clock; When is the wall
// clock used for logging.  Channels absent from the source line are absent
// from Values.
type Sample struct {
	Elapsed float64
	When    time.Time
	Values  map[string]float64
}
