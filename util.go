// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"time"
)

// LogTime gets the current time in log format
func LogTime() string {
	return time.Now().Format(logDateFormat)
}

// FormatElapsed renders elapsed seconds as HH:MM:SS
func FormatElapsed(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// formatRange renders a [min, max] interval for warnings
func formatRange(min, max float64) string {
	return fmt.Sprintf("[%.0f, %.0f]", min, max)
}

// ErrorString cleans up an error string to eliminate the filename so that
// it can be logged compactly
func ErrorString(err error) string {
	errString := fmt.Sprintf("%s", err)
	s0 := strings.Split(errString, ":")
	s1 := s0[len(s0)-1]
	s2 := strings.TrimSpace(s1)
	return s2
}
