// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Channel definitions and per-sketch deployment presets
package main

import (
	"fmt"
	"strings"
)

// Channel describes one measured quantity: its physical bounds and the
// largest plausible change between consecutive readings.  MaxDelta of zero
// disables anomaly checking for the channel.
type Channel struct {
	Name     string   `yaml:"name" json:"name"`
	Unit     string   `yaml:"unit" json:"unit"`
	Min      float64  `yaml:"min" json:"min"`
	Max      float64  `yaml:"max" json:"max"`
	MaxDelta float64  `yaml:"max_delta,omitempty" json:"max_delta,omitempty"`
	Sideband bool     `yaml:"sideband,omitempty" json:"sideband,omitempty"`
	Aliases  []string `yaml:"aliases,omitempty" json:"-"`
}

// Column gets the channel's CSV column name
func (c Channel) Column() string {
	if c.Unit == "" {
		return c.Name
	}
	return c.Name + "_" + c.Unit
}

// RecordLayout describes a tagged positional record: a leading literal tag
// followed by comma-separated numeric fields in fixed order.  A "-" field
// is present on the wire but not mapped to any channel.
type RecordLayout struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Fields []string `yaml:"fields" json:"fields"`
}

// Deployment is the static channel set for one sensor module
type Deployment struct {
	Name     string
	Channels []Channel
	Layouts  []RecordLayout
}

// ChannelByName finds a channel in the deployment
func (d Deployment) ChannelByName(name string) (Channel, bool) {
	for _, c := range d.Channels {
		if c.Name == name {
			return c, true
		}
	}
	return Channel{}, false
}

func bme280Channels(baselineAltitude float64) []Channel {
	return []Channel{
		{Name: "temp", Unit: "C", Min: -40, Max: 85, MaxDelta: 10,
			Aliases: []string{"temp", "t", "temperature"}},
		{Name: "hum", Unit: "%", Min: 0, Max: 100, MaxDelta: 30,
			Aliases: []string{"hum", "h", "humidity"}},
		{Name: "pres", Unit: "hPa", Min: 300, Max: 1100, MaxDelta: 20,
			Aliases: []string{"pres", "p", "pressure"}},
		{Name: "alt", Unit: "m",
			Min: baselineAltitude - AltitudeTolerance,
			Max: baselineAltitude + AltitudeTolerance, MaxDelta: 50,
			Aliases: []string{"alt", "altitude", "height"}},
	}
}

// DeploymentByName gets the preset channel set for a sensor module, with
// any config-file overrides applied
func DeploymentByName(name string, config *ServiceConfig) (Deployment, error) {
	baseline := config.BaselineAltitude
	if baseline == 0 {
		baseline = DefaultBaselineAltitude
	}

	d := Deployment{Name: strings.ToLower(name)}

	switch d.Name {

	case "bme280", "bmp280":
		d.Channels = bme280Channels(baseline)

	case "lora":
		d.Channels = append(bme280Channels(baseline),
			Channel{Name: "rssi", Unit: "dBm", Min: -140, Max: 0, Sideband: true,
				Aliases: []string{"rssi"}},
			Channel{Name: "snr", Unit: "dB", Min: -20, Max: 15, Sideband: true,
				Aliases: []string{"snr"}},
			// Attitude/position payload of the secondary mission record.
			// Unit quaternion components, accelerations up to 16 g, and
			// dead-reckoned position; no plausible-jump thresholds since
			// the vehicle tumbles freely
			Channel{Name: "q0", Min: -1, Max: 1, Aliases: []string{"q0"}},
			Channel{Name: "q1", Min: -1, Max: 1, Aliases: []string{"q1"}},
			Channel{Name: "q2", Min: -1, Max: 1, Aliases: []string{"q2"}},
			Channel{Name: "q3", Min: -1, Max: 1, Aliases: []string{"q3"}},
			Channel{Name: "acc_x", Unit: "m/s2", Min: -160, Max: 160, Aliases: []string{"ax"}},
			Channel{Name: "acc_y", Unit: "m/s2", Min: -160, Max: 160, Aliases: []string{"ay"}},
			Channel{Name: "acc_z", Unit: "m/s2", Min: -160, Max: 160, Aliases: []string{"az"}},
			Channel{Name: "pos_x", Unit: "m", Min: -10000, Max: 10000, Aliases: []string{"px"}},
			Channel{Name: "pos_y", Unit: "m", Min: -10000, Max: 10000, Aliases: []string{"py"}},
			Channel{Name: "pos_z", Unit: "m", Min: -10000, Max: 10000, Aliases: []string{"pz"}},
		)
		// CANSAT,id,temp,pres,alt,hum,ms
		// CANSAT_SEC,id,ms,q0,q1,q2,q3,ax,ay,az,px,py,pz
		d.Layouts = []RecordLayout{
			{Tag: "CANSAT", Fields: []string{"-", "temp", "pres", "alt", "hum", "-"}},
			{Tag: "CANSAT_SEC", Fields: []string{"-", "-", "q0", "q1", "q2", "q3",
				"acc_x", "acc_y", "acc_z", "pos_x", "pos_y", "pos_z"}},
		}

	case "mq2":
		d.Channels = []Channel{
			{Name: "gas_raw", Unit: "raw", Min: 0, Max: 1023, MaxDelta: 400,
				Aliases: []string{"gas_raw", "gas"}},
			{Name: "pollution", Unit: "%", Min: 0, Max: 100, MaxDelta: 40,
				Aliases: []string{"pollution_percent", "pollution"}},
		}

	case "vegfire", "ov7670":
		d.Channels = []Channel{
			{Name: "veg", Unit: "%", Min: 0, Max: 100, MaxDelta: 40,
				Aliases: []string{"veg", "vegetation"}},
			{Name: "fire", Unit: "%", Min: 0, Max: 100, MaxDelta: 40,
				Aliases: []string{"fire"}},
			{Name: "terrain", Unit: "%", Min: 0, Max: 100, MaxDelta: 60,
				Aliases: []string{"terrain"}},
		}

	default:
		return Deployment{}, fmt.Errorf("unknown deployment '%s'", name)
	}

	// Config-file channel sets replace the preset outright
	if len(config.Channels) != 0 {
		d.Channels = config.Channels
	}
	if len(config.Layouts) != 0 {
		d.Layouts = config.Layouts
	}

	return d, nil
}
