// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Fixed-capacity rolling windows and running statistics
package main

import (
	"fmt"
	"math"
)

// Point is one (elapsed seconds, value) pair in a rolling window
type Point struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

// MarshalJSON writes gap values as null; encoding/json has no NaN rendering
func (p Point) MarshalJSON() ([]byte, error) {
	if math.IsNaN(p.V) {
		return fmt.Appendf(nil, `{"t":%.3f,"v":null}`, p.T), nil
	}
	return fmt.Appendf(nil, `{"t":%.3f,"v":%g}`, p.T, p.V), nil
}

// Window is a fixed-capacity FIFO ring of points.  Once full, each push
// evicts the oldest entry.  Entries are ordered by non-decreasing elapsed
// time because the single ingestion loop is the only writer.
type Window struct {
	points []Point
	head   int
	count  int
}

// NewWindow allocates a window of the given capacity
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{points: make([]Point, capacity)}
}

// Push appends a point, evicting the oldest if the window is full
func (w *Window) Push(t, v float64) {
	tail := (w.head + w.count) % len(w.points)
	w.points[tail] = Point{T: t, V: v}
	if w.count < len(w.points) {
		w.count++
	} else {
		w.head = (w.head + 1) % len(w.points)
	}
}

// Len gets the number of points held
func (w *Window) Len() int {
	return w.count
}

// Last gets the most recent point
func (w *Window) Last() (Point, bool) {
	if w.count == 0 {
		return Point{}, false
	}
	return w.points[(w.head+w.count-1)%len(w.points)], true
}

// Points copies the window contents in arrival order
func (w *Window) Points() []Point {
	out := make([]Point, 0, w.count)
	for i := 0; i < w.count; i++ {
		out = append(out, w.points[(w.head+i)%len(w.points)])
	}
	return out
}

// RunningStats accumulates count, sum, min and max for the lifetime of a
// session.  Min and max never revert; count and sum only grow.
type RunningStats struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
}

// NewRunningStats returns an empty accumulator
func NewRunningStats() *RunningStats {
	return &RunningStats{Min: math.Inf(1), Max: math.Inf(-1)}
}

// Update folds one reading in, ignoring NaN
func (s *RunningStats) Update(v float64) {
	if math.IsNaN(v) {
		return
	}
	if v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	s.Sum += v
	s.Count++
}

// Avg gets the running mean, NaN when empty
func (s *RunningStats) Avg() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	return s.Sum / float64(s.Count)
}
