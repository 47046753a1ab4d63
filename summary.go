// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Post-session summary file
package main

import (
	"fmt"
	"os"
	"strings"
)

// WriteSessionSummary writes the session's clean statistics next to its
// CSV dataset.  The HTML report proper is generated offline from the CSV
// by the reporting job; this file is the quick human-readable digest.
func WriteSessionSummary(filename string, s *SessionState) error {

	var b strings.Builder

	fmt.Fprintf(&b, "SESSION SUMMARY - CLEAN DATA\n")
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 50))
	fmt.Fprintf(&b, "Session:        %s (%s)\n", s.id, s.dep.Name)
	fmt.Fprintf(&b, "Generated:      %s\n", LogTime())
	fmt.Fprintf(&b, "Duration:       %s\n", FormatElapsed(s.Elapsed()))
	fmt.Fprintf(&b, "Packets:        %d\n", s.packetCount)
	fmt.Fprintf(&b, "Clean samples:  %d\n", s.cleanCount)
	fmt.Fprintf(&b, "Out of range:   %d\n", s.outOfRange)
	fmt.Fprintf(&b, "Anomalies:      %d\n", s.anomalyCount)
	fmt.Fprintf(&b, "Device resets:  %d\n\n", s.policy.ResetCount())

	for _, c := range s.dep.Channels {
		stats := s.buffers.CleanStats(c.Name)
		fmt.Fprintf(&b, "%s (%s):\n", c.Name, c.Unit)
		if stats.Count == 0 {
			fmt.Fprintf(&b, "  no valid data\n\n")
			continue
		}
		fmt.Fprintf(&b, "  min %.2f\n  max %.2f\n  avg %.2f\n  valid readings %d\n\n",
			stats.Min, stats.Max, stats.Avg(), stats.Count)
	}

	return os.WriteFile(filename, []byte(b.String()), 0666)
}
