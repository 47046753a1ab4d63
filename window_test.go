// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package main

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFIFOEviction(t *testing.T) {
	w := NewWindow(3)

	for i := 1; i <= 4; i++ {
		w.Push(float64(i), float64(i)*10)
	}

	assert.Equal(t, 3, w.Len())

	points := w.Points()
	require.Len(t, points, 3)
	assert.Equal(t, 2.0, points[0].T)
	assert.Equal(t, 3.0, points[1].T)
	assert.Equal(t, 4.0, points[2].T)

	last, has := w.Last()
	require.True(t, has)
	assert.Equal(t, 40.0, last.V)
}

func TestWindowEmpty(t *testing.T) {
	w := NewWindow(3)
	assert.Equal(t, 0, w.Len())
	assert.Empty(t, w.Points())
	_, has := w.Last()
	assert.False(t, has)
}

func TestPointJSONGap(t *testing.T) {
	contents, err := json.Marshal([]Point{{T: 1.5, V: 21.4}, {T: 3, V: math.NaN()}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"t":1.5,"v":21.4},{"t":3,"v":null}]`, string(contents))
}

func TestRunningStats(t *testing.T) {
	s := NewRunningStats()
	assert.True(t, math.IsNaN(s.Avg()))

	s.Update(21.0)
	s.Update(math.NaN())
	s.Update(19.0)
	s.Update(23.0)

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 19.0, s.Min)
	assert.Equal(t, 23.0, s.Max)
	assert.InDelta(t, 21.0, s.Avg(), 1e-9)
}
