// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Outbound MQTT support
package main

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
)

// MqttPublisher republishes accepted samples to a broker so remote
// dashboards can follow the session live.  Publishing is QoS 0
// fire-and-forget and never blocks a tick.
type MqttPublisher struct {
	client    MQTT.Client
	topic     string
	session   string
	connected atomic.Bool
	// Written by the paho connection-lost handler, read by the tick loop
	lastLost atomic.Pointer[string]
}

// mqttSample is the published message format
type mqttSample struct {
	Session string             `json:"session"`
	When    string             `json:"when"`
	Elapsed float64            `json:"elapsed"`
	Values  map[string]float64 `json:"values"`
}

// NewMqttPublisher connects to the broker and starts republishing.  The
// paho client reconnects on its own; connection state only affects the
// status snapshot.
func NewMqttPublisher(broker string, sessionID string, topicRoot string, deployment string) *MqttPublisher {

	p := &MqttPublisher{
		topic:   fmt.Sprintf("%s/%s/sample", topicRoot, deployment),
		session: sessionID,
	}

	// Allocate and set up the options
	mqttOpts := MQTT.NewClientOptions()
	mqttOpts.AddBroker(broker)
	mqttOpts.SetClientID("groundstation-" + sessionID)
	mqttOpts.SetAutoReconnect(true)
	mqttOpts.SetCleanSession(true)
	mqttOpts.SetConnectTimeout(10 * time.Second)

	// Handle lost connections
	onMqConnectionLost := func(client MQTT.Client, err error) {
		p.connected.Store(false)
		when := time.Now().Format(logDateFormat)
		p.lastLost.Store(&when)
		SessionLog(fmt.Sprintf("*** MQTT connection lost: %s\n", ErrorString(err)))
	}
	mqttOpts.SetConnectionLostHandler(onMqConnectionLost)

	onMqConnectionMade := func(client MQTT.Client) {
		p.connected.Store(true)
		SessionLog(fmt.Sprintf("MQTT connection established to %s\n", broker))
	}
	mqttOpts.SetOnConnectHandler(onMqConnectionMade)

	p.client = MQTT.NewClient(mqttOpts)

	// Connect in the background; a broker outage must not hold up the
	// serial session
	go func() {
		if token := p.client.Connect(); token.Wait() && token.Error() != nil {
			SessionLog(fmt.Sprintf("error connecting to MQTT broker %s: %s\n",
				broker, ErrorString(token.Error())))
		}
	}()

	return p
}

// PublishSample sends one accepted sample to the session topic
func (p *MqttPublisher) PublishSample(s Sample) {

	if !p.connected.Load() {
		return
	}

	msg := mqttSample{
		Session: p.session,
		When:    s.When.UTC().Format("2006-01-02T15:04:05Z"),
		Elapsed: s.Elapsed,
		Values:  s.Values,
	}
	contents, err := json.Marshal(&msg)
	if err != nil {
		return
	}

	p.client.Publish(p.topic, 0, false, contents)

}

// Status describes the broker connection for the snapshot
func (p *MqttPublisher) Status() string {
	if p.connected.Load() {
		return "connected"
	}
	if lost := p.lastLost.Load(); lost != nil {
		return "disconnected since " + *lost
	}
	return "connecting"
}

// Close disconnects from the broker
func (p *MqttPublisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
