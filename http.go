// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// HTTP status and metrics endpoints for the visualization side
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Latest ViewSnapshot, published by the tick loop and read by HTTP
// handlers; copy-on-write so the pipeline state itself stays single-owner
var currentSnapshot atomic.Value

// PublishSnapshot makes a frame visible to the HTTP side
func PublishSnapshot(snap ViewSnapshot) {
	currentSnapshot.Store(snap)
}

// HTTPStatusHandler serves the status and metrics endpoints
func HTTPStatusHandler(address string) {

	http.HandleFunc("/", inboundWebRootHandler)
	http.HandleFunc("/status", inboundWebStatusHandler)
	http.Handle("/metrics", promhttp.Handler())

	fmt.Printf("Now serving status on %s\n", address)
	err := http.ListenAndServe(address, nil)
	if err != nil {
		SessionLog(fmt.Sprintf("status server: %s\n", ErrorString(err)))
	}

}

// Handle inbound HTTP requests for root
func inboundWebRootHandler(rw http.ResponseWriter, req *http.Request) {
	io.WriteString(rw, "groundstation. (see /status and /metrics)\n")
}

// Handle inbound HTTP requests for the current view snapshot
func inboundWebStatusHandler(rw http.ResponseWriter, req *http.Request) {

	rw.Header().Set("Content-Type", "application/json")

	snap := currentSnapshot.Load()
	if snap == nil {
		io.WriteString(rw, "{}\n")
		return
	}

	contents, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		io.WriteString(rw, ErrorString(err))
		return
	}
	rw.Write(contents)

}
