// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Device reset policy
package main

import (
	"fmt"
	"time"
)

// Resetter is the transport capability the policy drives.  The real
// implementation toggles the serial control line, waits out the settle
// delay and flushes pending input.
type Resetter interface {
	Reset() error
}

// ResetPolicyState is the policy's state machine position
type ResetPolicyState int

const (
	ResetIdle ResetPolicyState = iota
	ResetInFlight
	ResetExhausted
)

func (s ResetPolicyState) String() string {
	switch s {
	case ResetInFlight:
		return "in-flight"
	case ResetExhausted:
		return "exhausted"
	}
	return "idle"
}

// ResetOutcome reports what one anomaly trigger did
type ResetOutcome int

const (
	ResetNone ResetOutcome = iota
	ResetIssued
	ResetSuppressed
	ResetRefusedExhausted
)

// ResetPolicy decides, from anomaly triggers and reset history, when to
// command a hardware reset.  It enforces a minimum interval between resets
// and a lifetime attempt budget; once the budget is spent the policy is
// exhausted for the remainder of the session and anomalies are only
// reported.
type ResetPolicy struct {
	transport   Resetter
	maxResets   int
	minInterval time.Duration

	state      ResetPolicyState
	resetCount int
	lastReset  time.Time
	now        func() time.Time
}

// NewResetPolicy builds a policy over a transport capability
func NewResetPolicy(transport Resetter, maxResets int, minInterval time.Duration) *ResetPolicy {
	return &ResetPolicy{
		transport:   transport,
		maxResets:   maxResets,
		minInterval: minInterval,
		state:       ResetIdle,
		now:         time.Now,
	}
}

// Trigger runs the state machine for one anomaly-bearing sample.  reason
// appears in the log line.  The issued reset is synchronous: the transport
// performs the toggle-and-settle sequence before Trigger returns, and the
// state transitions back to Idle immediately.
func (p *ResetPolicy) Trigger(reason string) ResetOutcome {

	if p.state == ResetExhausted {
		return ResetRefusedExhausted
	}

	if p.resetCount >= p.maxResets {
		p.state = ResetExhausted
		SessionLog(fmt.Sprintf("*** RESET BUDGET SPENT (%d) - device presumed faulty, no further resets: %s\n",
			p.maxResets, reason))
		return ResetRefusedExhausted
	}

	now := p.now()
	if !p.lastReset.IsZero() && now.Sub(p.lastReset) < p.minInterval {
		SessionLog(fmt.Sprintf("reset suppressed, too soon after the last one: %s\n", reason))
		return ResetSuppressed
	}

	p.state = ResetInFlight
	SessionLog(fmt.Sprintf("*** RESETTING DEVICE (%d/%d): %s\n", p.resetCount+1, p.maxResets, reason))

	err := p.transport.Reset()
	if err != nil {
		SessionLog(fmt.Sprintf("reset signal failed: %s\n", ErrorString(err)))
	}

	// The attempt counts whether or not the control line cooperated
	p.resetCount++
	p.lastReset = now
	p.state = ResetIdle

	return ResetIssued
}

// State gets the current state machine position
func (p *ResetPolicy) State() ResetPolicyState {
	return p.state
}

// ResetCount gets the number of resets issued this session
func (p *ResetPolicy) ResetCount() int {
	return p.resetCount
}
