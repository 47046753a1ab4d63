// Copyright 2025 CanSat Ops.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

// Console command support
package main

import (
	"bufio"
	"os"
	"strings"
)

// Console commands understood by the tick loop
const (
	cmdQuit  = "q"
	cmdReset = "r"
	cmdStats = "s"
)

// inputHandler watches stdin and forwards recognized commands to the tick
// loop; the commands mutate session state, so they are executed there, not
// here
func inputHandler(commands chan<- string) {

	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {

		text := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch text {

		case "":
			// Ignore

		case cmdQuit, cmdReset, cmdStats:
			commands <- text

		default:
			SessionLog("commands: q=quit  r=reset device  s=stats\n")

		}

	}

}
