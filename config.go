// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Global configuration parameters
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Serial link defaults, coordinated with the Arduino sketches
const DefaultBaudRate = 115200
const DefaultDeployment = "bme280"

// Rolling window capacity: two minutes of data at 1 Hz
const DefaultWindowSize = 120

// Tick cadence for the ingestion loop, and the per-tick line drain cap
// that bounds tick latency when the device bursts
const DefaultTickInterval = 150 * time.Millisecond
const DefaultMaxLinesPerTick = 20

// Reset policy defaults
const DefaultMinResetInterval = 5 * time.Second
const DefaultMaxResets = 3

// Consecutive out-of-range readings before a channel is flagged as a
// persistent sensor error
const DefaultErrorStreakThreshold = 5

// Hardware reset timing: DTR held low, then settle time for the bootloader
const ResetPulseWidth = 100 * time.Millisecond
const ResetSettleDelay = 2 * time.Second

// Delay before the outer loop retries a failed serial connection
const ReconnectDelay = 5 * time.Second

// Altitude presets assume a fixed launch site unless overridden
const DefaultBaselineAltitude = 650.0
const AltitudeTolerance = 500.0

// Decimal places written to the session CSV
const CSVPrecision = 2

// Log-related
const logDateFormat string = "2006-01-02 15:04:05"

// ServiceConfig is the service configuration file format
type ServiceConfig struct {

	// Serial transport
	Port           string   `yaml:"port,omitempty"`
	Baud           int      `yaml:"baud,omitempty"`
	PortCandidates []string `yaml:"port_candidates,omitempty"`

	// Pipeline
	Deployment           string  `yaml:"deployment,omitempty"`
	WindowSize           int     `yaml:"window_size,omitempty"`
	TickMillis           int     `yaml:"tick_millis,omitempty"`
	MaxLinesPerTick      int     `yaml:"max_lines_per_tick,omitempty"`
	MinResetIntervalSecs float64 `yaml:"min_reset_interval_secs,omitempty"`
	MaxResets            int     `yaml:"max_resets,omitempty"`
	ErrorStreakThreshold int     `yaml:"error_streak_threshold,omitempty"`
	CleanPerChannel      bool    `yaml:"clean_per_channel,omitempty"`
	BaselineAltitude     float64 `yaml:"baseline_altitude,omitempty"`

	// Channel overrides; when present these replace the deployment preset
	Channels []Channel      `yaml:"channels,omitempty"`
	Layouts  []RecordLayout `yaml:"layouts,omitempty"`

	// Sinks
	DataDirectory string `yaml:"data_directory,omitempty"`
	HTTPAddress   string `yaml:"http_address,omitempty"`
	MQTTBroker    string `yaml:"mqtt_broker,omitempty"`
	MQTTTopicRoot string `yaml:"mqtt_topic_root,omitempty"`
}

// DefaultServiceConfig returns the built-in configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Baud:                 DefaultBaudRate,
		Deployment:           DefaultDeployment,
		WindowSize:           DefaultWindowSize,
		TickMillis:           int(DefaultTickInterval / time.Millisecond),
		MaxLinesPerTick:      DefaultMaxLinesPerTick,
		MinResetIntervalSecs: DefaultMinResetInterval.Seconds(),
		MaxResets:            DefaultMaxResets,
		ErrorStreakThreshold: DefaultErrorStreakThreshold,
		BaselineAltitude:     DefaultBaselineAltitude,
		DataDirectory:        "data",
		HTTPAddress:          ":8080",
		MQTTTopicRoot:        "groundstation",
	}
}

// LoadServiceConfig reads the YAML configuration file, if any, over the defaults
func LoadServiceConfig(filename string) (ServiceConfig, error) {
	config := DefaultServiceConfig()

	if filename == "" {
		return config, nil
	}

	contents, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("can't read config %s: %v", filename, err)
	}

	err = yaml.Unmarshal(contents, &config)
	if err != nil {
		return config, fmt.Errorf("badly formatted config %s: %v", filename, err)
	}

	return config, nil
}

// TickInterval gets the configured tick cadence as a duration
func (config *ServiceConfig) TickInterval() time.Duration {
	if config.TickMillis <= 0 {
		return DefaultTickInterval
	}
	return time.Duration(config.TickMillis) * time.Millisecond
}

// MinResetInterval gets the configured reset interval guard as a duration
func (config *ServiceConfig) MinResetInterval() time.Duration {
	if config.MinResetIntervalSecs <= 0 {
		return DefaultMinResetInterval
	}
	return time.Duration(config.MinResetIntervalSecs * float64(time.Second))
}
