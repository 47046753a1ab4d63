// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServiceConfigDefaults(t *testing.T) {
	config, err := LoadServiceConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaudRate, config.Baud)
	assert.Equal(t, "bme280", config.Deployment)
	assert.Equal(t, DefaultTickInterval, config.TickInterval())
	assert.Equal(t, DefaultMinResetInterval, config.MinResetInterval())
}

func TestLoadServiceConfigOverrides(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
port: /dev/ttyACM1
deployment: mq2
tick_millis: 250
min_reset_interval_secs: 10
channels:
  - name: gas_raw
    unit: raw
    min: 0
    max: 2047
    max_delta: 500
`
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0666))

	config, err := LoadServiceConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", config.Port)
	assert.Equal(t, "mq2", config.Deployment)
	assert.Equal(t, 250*time.Millisecond, config.TickInterval())
	assert.Equal(t, 10*time.Second, config.MinResetInterval())

	// Defaults the file doesn't mention survive
	assert.Equal(t, DefaultBaudRate, config.Baud)

	// Config channels replace the deployment preset
	dep, err := DeploymentByName(config.Deployment, &config)
	require.NoError(t, err)
	require.Len(t, dep.Channels, 1)
	assert.Equal(t, 2047.0, dep.Channels[0].Max)
	assert.Equal(t, 500.0, dep.Channels[0].MaxDelta)
}

func TestLoadServiceConfigBadFile(t *testing.T) {
	_, err := LoadServiceConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDeploymentByNameUnknown(t *testing.T) {
	config := DefaultServiceConfig()
	_, err := DeploymentByName("gps", &config)
	assert.Error(t, err)
}
