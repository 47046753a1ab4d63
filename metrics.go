// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Prometheus counters for the ingestion pipeline
package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	statPackets = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "groundstation",
		Name:      "packets_total",
		Help:      "Telemetry records parsed from the serial stream",
	})
	statAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "groundstation",
		Name:      "clean_samples_total",
		Help:      "Samples accepted into the clean view",
	})
	statUnrecognized = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "groundstation",
		Name:      "unrecognized_lines_total",
		Help:      "Lines that matched no known grammar",
	})
	statOutOfRange = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "groundstation",
		Name:      "out_of_range_readings_total",
		Help:      "Readings outside their channel's physical bounds",
	})
	statAnomalies = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "groundstation",
		Name:      "anomalies_total",
		Help:      "Implausible jumps between consecutive readings",
	})
	statResets = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "groundstation",
		Name:      "resets_total",
		Help:      "Hardware resets issued to the device",
	})
	statResetsSuppressed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "groundstation",
		Name:      "resets_suppressed_total",
		Help:      "Reset triggers suppressed by the minimum-interval guard",
	})
	statReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "groundstation",
		Name:      "reconnects_total",
		Help:      "Serial sessions restarted after a transport error",
	})
)

// MetricsInit registers the pipeline counters
func MetricsInit() {
	prometheus.MustRegister(
		statPackets,
		statAccepted,
		statUnrecognized,
		statOutOfRange,
		statAnomalies,
		statResets,
		statResetsSuppressed,
		statReconnects,
	)
}
