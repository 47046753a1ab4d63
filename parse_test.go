// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loraDeployment(t *testing.T) Deployment {
	config := DefaultServiceConfig()
	dep, err := DeploymentByName("lora", &config)
	require.NoError(t, err)
	return dep
}

func TestParsePairs(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("temp=21.4,hum=44.1")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, 21.4, parsed.Values["temp"])
	assert.Equal(t, 44.1, parsed.Values["hum"])
}

func TestParsePairsAliases(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("t=21.4, humidity=44.1, pressure=1001.2")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, 21.4, parsed.Values["temp"])
	assert.Equal(t, 44.1, parsed.Values["hum"])
	assert.Equal(t, 1001.2, parsed.Values["pres"])
}

func TestParsePairsFirstKeyWins(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("temp=21.4,t=99.0")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, 21.4, parsed.Values["temp"])
}

func TestParsePairsUnknownKeysIgnored(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("temp=21.4,voltage=3.3")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Len(t, parsed.Values, 1)

	// A line carrying only unknown keys maps to nothing
	parsed = p.Parse("voltage=3.3,current=0.2")
	assert.Equal(t, LineUnrecognized, parsed.Kind)
}

func TestParsePairsFailClosed(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	// One malformed number rejects the whole line even though temp parsed
	parsed := p.Parse("temp=21.4,hum=4x.1")
	assert.Equal(t, LineUnrecognized, parsed.Kind)
	assert.Nil(t, parsed.Values)
}

func TestParsePositional(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("CANSAT,1,21.4,1001.2,648.0,44.1,1234")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, 21.4, parsed.Values["temp"])
	assert.Equal(t, 1001.2, parsed.Values["pres"])
	assert.Equal(t, 648.0, parsed.Values["alt"])
	assert.Equal(t, 44.1, parsed.Values["hum"])
	_, hasID := parsed.Values["-"]
	assert.False(t, hasID)
}

func TestParsePositionalSecondaryRecord(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("CANSAT_SEC,7,120340,0.98,0.01,-0.12,0.05,0.1,-0.2,9.8,1.5,-2.0,120.0")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, 0.98, parsed.Values["q0"])
	assert.Equal(t, -0.12, parsed.Values["q2"])
	assert.Equal(t, 9.8, parsed.Values["acc_z"])
	assert.Equal(t, 120.0, parsed.Values["pos_z"])
	_, hasTemp := parsed.Values["temp"]
	assert.False(t, hasTemp)

	// Both lora grammars coexist on one stream
	parsed = p.Parse("CANSAT,7,21.4,1001.2,648.0,44.1,120400")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, 21.4, parsed.Values["temp"])
}

func TestParsePositionalTrailingIgnoredOptional(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	// The trailing millis field may be absent on the wire
	parsed := p.Parse("CANSAT,1,21.4,1001.2,648.0,44.1")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, 44.1, parsed.Values["hum"])

	// A mapped field missing is a short record and rejects the line
	parsed = p.Parse("CANSAT,1,21.4,1001.2,648.0")
	assert.Equal(t, LineUnrecognized, parsed.Kind)
}

func TestParsePositionalFailClosed(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("CANSAT,1,21.4,oops,648.0,44.1,1234")
	assert.Equal(t, LineUnrecognized, parsed.Kind)
}

func TestParseSidebandLatch(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("RSSI: -86.5")
	require.Equal(t, LineSideband, parsed.Kind)
	assert.Equal(t, "rssi", parsed.Channel)
	assert.Equal(t, -86.5, parsed.Value)

	// The latched value rides along on the next record
	parsed = p.Parse("temp=21.0")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, -86.5, parsed.Values["rssi"])

	// And persists onto later records until overwritten
	parsed = p.Parse("temp=21.1")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, -86.5, parsed.Values["rssi"])

	p.Parse("RSSI: -90")
	parsed = p.Parse("temp=21.2")
	require.Equal(t, LineTelemetry, parsed.Kind)
	assert.Equal(t, -90.0, parsed.Values["rssi"])
}

func TestParseSidebandOnlyForSidebandChannels(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	// temp is a known channel but not a sideband one
	parsed := p.Parse("temp: 21.0")
	assert.Equal(t, LineUnrecognized, parsed.Kind)

	parsed = p.Parse("LQI: 42")
	assert.Equal(t, LineUnrecognized, parsed.Kind)
}

func TestParseControlLines(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("info=sensor recovered")
	assert.Equal(t, LineInfo, parsed.Kind)
	assert.Equal(t, "sensor recovered", parsed.Text)

	parsed = p.Parse("warning=weak signal")
	assert.Equal(t, LineInfo, parsed.Kind)

	parsed = p.Parse("error=bme280 not found")
	assert.Equal(t, LineError, parsed.Kind)
	assert.Equal(t, "bme280 not found", parsed.Text)

	parsed = p.Parse("alert=fire detected")
	assert.Equal(t, LineError, parsed.Kind)
}

func TestParseControlLinesKeepCasing(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	parsed := p.Parse("info=BME280 OK")
	require.Equal(t, LineInfo, parsed.Kind)
	assert.Equal(t, "BME280 OK", parsed.Text)

	parsed = p.Parse("ERROR=SD Card missing")
	require.Equal(t, LineError, parsed.Kind)
	assert.Equal(t, "SD Card missing", parsed.Text)
}

func TestParseNoise(t *testing.T) {
	p := NewLineParser(loraDeployment(t))

	for _, line := range []string{"", "   ", "Booting v1.2...", "####", "\x00\x01"} {
		assert.Equal(t, LineUnrecognized, p.Parse(line).Kind, "line %q", line)
	}
}
