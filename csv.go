// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// CSV session recording
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SessionRecorder appends every accepted sample to the session's CSV file.
// The file is recreated at session start so each dataset covers exactly one
// session.
type SessionRecorder struct {
	fd       *os.File
	filename string
	channels []Channel
}

// NewSessionRecorder creates the session dataset and writes its header
func NewSessionRecorder(filename string, channels []Channel) (*SessionRecorder, error) {

	fd, err := os.OpenFile(filename, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}

	// Write the header
	columns := []string{"timestamp"}
	for _, c := range channels {
		columns = append(columns, c.Column())
	}
	_, err = fd.WriteString(strings.Join(columns, ",") + "\r\n")
	if err != nil {
		fd.Close()
		return nil, err
	}

	return &SessionRecorder{fd: fd, filename: filename, channels: channels}, nil
}

// Append writes one sample as a row: wall-clock timestamp, then one field
// per configured channel with fixed decimal precision, empty for channels
// the sample didn't carry
func (r *SessionRecorder) Append(sample Sample) error {

	s := sample.When.Format(logDateFormat)

	for _, c := range r.channels {
		value, present := sample.Values[c.Name]
		if present {
			s += "," + strconv.FormatFloat(value, 'f', CSVPrecision, 64)
		} else {
			s += ","
		}
	}

	s += "\r\n"

	_, err := r.fd.WriteString(s)
	if err != nil {
		return fmt.Errorf("csv append %s: %v", r.filename, err)
	}
	return nil
}

// Filename gets the dataset path
func (r *SessionRecorder) Filename() string {
	return r.filename
}

// Close flushes and closes the dataset
func (r *SessionRecorder) Close() error {
	if r.fd == nil {
		return nil
	}
	err := r.fd.Close()
	r.fd = nil
	return err
}
