// Package main provides the entry point for the hubsync CLI tool.
package main

import (
	"github.com/LiamTF/hubsync/cmd/hubsync/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
