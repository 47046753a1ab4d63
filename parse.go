// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Serial line parsing
package main

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind discriminates the parsed-line variants
type LineKind int

const (
	LineUnrecognized LineKind = iota
	LineTelemetry
	LineInfo
	LineError
	LineSideband
)

// ParsedLine is the tagged result of parsing one raw line.  Values is set
// for LineTelemetry; Channel/Value for LineSideband; Text for LineInfo and
// LineError.
type ParsedLine struct {
	Kind    LineKind
	Values  map[string]float64
	Channel string
	Value   float64
	Text    string
}

// Sideband lines look like "RSSI: -86.5" with an optional trailing unit
var sidebandPattern = regexp.MustCompile(`^([A-Za-z_]+)\s*:\s*([-+]?[0-9]+(?:\.[0-9]+)?)\s*[A-Za-z%]*$`)

// LineParser recognizes the line grammars emitted by the firmware against
// a single stream.  Sideband metrics arrive on their own lines ahead of
// the payload record, so the parser latches them and attaches the latched
// values to each telemetry record it assembles.
type LineParser struct {
	byAlias  map[string]string
	sideband map[string]bool
	layouts  []RecordLayout
	pending  map[string]float64
}

// NewLineParser builds a parser for the deployment's channel set
func NewLineParser(d Deployment) *LineParser {
	p := &LineParser{
		byAlias:  map[string]string{},
		sideband: map[string]bool{},
		layouts:  d.Layouts,
		pending:  map[string]float64{},
	}
	for _, c := range d.Channels {
		p.byAlias[strings.ToLower(c.Name)] = c.Name
		for _, alias := range c.Aliases {
			// First alias registration wins
			key := strings.ToLower(alias)
			if _, used := p.byAlias[key]; !used {
				p.byAlias[key] = c.Name
			}
		}
		if c.Sideband {
			p.sideband[c.Name] = true
		}
	}
	return p
}

// Parse consumes one decoded text line and classifies it.  Lines that match
// no grammar, and lines that match a grammar but carry an unparsable number,
// are both Unrecognized: a malformed line is never partially accepted.
func (p *LineParser) Parse(raw string) ParsedLine {
	line := strings.TrimSpace(raw)
	if line == "" {
		return ParsedLine{Kind: LineUnrecognized}
	}

	lower := strings.ToLower(line)

	// Control signals from the firmware; the reported text keeps the
	// device's casing even though the prefix match is case-insensitive
	if strings.HasPrefix(lower, "info=") {
		return ParsedLine{Kind: LineInfo, Text: line[len("info="):]}
	}
	if strings.HasPrefix(lower, "warning=") {
		return ParsedLine{Kind: LineInfo, Text: line[len("warning="):]}
	}
	if strings.HasPrefix(lower, "error=") {
		return ParsedLine{Kind: LineError, Text: line[len("error="):]}
	}
	if strings.HasPrefix(lower, "alert=") {
		return ParsedLine{Kind: LineError, Text: line[len("alert="):]}
	}

	// Sideband metric, e.g. "RSSI: -86.5"
	if m := sidebandPattern.FindStringSubmatch(line); m != nil {
		channel, known := p.byAlias[strings.ToLower(m[1])]
		if known && p.sideband[channel] {
			value, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return ParsedLine{Kind: LineUnrecognized}
			}
			p.pending[channel] = value
			return ParsedLine{Kind: LineSideband, Channel: channel, Value: value}
		}
		return ParsedLine{Kind: LineUnrecognized}
	}

	// Tagged positional record, e.g. "CANSAT,1,21.4,1001.2,648.0,44.1,1234"
	for _, layout := range p.layouts {
		if values, is := p.parsePositional(line, layout); is {
			return p.assemble(values)
		}
	}

	// key=value pairs, e.g. "temp=21.4,hum=44.1"
	if values, is := p.parsePairs(line); is {
		return p.assemble(values)
	}

	return ParsedLine{Kind: LineUnrecognized}
}

// assemble finalizes a telemetry record, attaching the latched sideband
// values.  Latched values persist until overwritten so that a record
// following a missed quality line still carries the last known metric.
func (p *LineParser) assemble(values map[string]float64) ParsedLine {
	if len(values) == 0 {
		return ParsedLine{Kind: LineUnrecognized}
	}
	for channel, value := range p.pending {
		values[channel] = value
	}
	return ParsedLine{Kind: LineTelemetry, Values: values}
}

// parsePairs applies the key=value grammar.  Unknown keys are ignored for
// forward compatibility with firmware that sends extra fields; a malformed
// number in any pair rejects the whole line.
func (p *LineParser) parsePairs(line string) (map[string]float64, bool) {
	if !strings.Contains(line, "=") {
		return nil, false
	}

	values := map[string]float64{}
	for _, pair := range strings.Split(line, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, rawValue, is := strings.Cut(pair, "=")
		if !is {
			return nil, false
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
		if err != nil {
			return nil, false
		}
		channel, known := p.byAlias[strings.ToLower(strings.TrimSpace(key))]
		if !known {
			continue
		}
		if _, taken := values[channel]; !taken {
			values[channel] = value
		}
	}

	return values, true
}

// parsePositional applies one tagged fixed-order grammar
func (p *LineParser) parsePositional(line string, layout RecordLayout) (map[string]float64, bool) {
	parts := strings.Split(line, ",")
	if parts[0] != layout.Tag {
		return nil, false
	}

	// Trailing ignored fields may be absent on the wire
	required := 0
	for i, field := range layout.Fields {
		if field != "-" {
			required = i + 1
		}
	}
	if len(parts)-1 < required {
		return nil, false
	}

	values := map[string]float64{}
	for i, field := range layout.Fields {
		if i+1 >= len(parts) {
			break
		}
		if field == "-" {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return nil, false
		}
		values[field] = value
	}

	return values, true
}
