// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Session log support
package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Path of the current session's log file; empty until a session starts,
// in which case lines only reach the console
var sessionLogFile = ""

// SessionLogInit points the log at the current session's file
func SessionLogInit(filename string) {
	sessionLogFile = filename
}

// SessionLog logs a string to the console and the session's log file
func SessionLog(sWithoutDate string) {

	// Add a standard header unless it begins with a newline
	s := sWithoutDate
	if !strings.HasPrefix(sWithoutDate, "\n") {
		s = fmt.Sprintf("%s %s", time.Now().Format(logDateFormat), sWithoutDate)
	}

	// Print it to the console
	fmt.Printf("%s", s)

	if sessionLogFile == "" {
		return
	}

	// Open it
	fd, err := os.OpenFile(sessionLogFile, os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {

		// Don't attempt to create it if it already exists
		_, err2 := os.Stat(sessionLogFile)
		if err2 == nil {
			fmt.Printf("SessionLog: can't log to %s: %s\n", sessionLogFile, err)
			return
		}
		if !os.IsNotExist(err2) {
			fmt.Printf("SessionLog: ignoring attempt to create %s: %s\n", sessionLogFile, err2)
			return
		}

		// Attempt to create the file because it doesn't already exist
		fd, err = os.OpenFile(sessionLogFile, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			fmt.Printf("SessionLog: error creating file %s: %s\n", sessionLogFile, err)
			return
		}
	}

	// Append it
	fd.WriteString(s)

	// Close and exit
	fd.Close()

}
