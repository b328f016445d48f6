// Package main provides the ppg command-line tool.
package main

import "os"

// Exit codes, matching the teacher's ExitSuccess/ExitError/ExitUsage
// convention.
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

func main() {
	os.Exit(Execute())
}
