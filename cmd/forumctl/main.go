// Command forumctl is the counselor and operator CLI for the campus forum.
package main

import (
	"os"

	"campuscare/cmd/forumctl/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// errors are printed by the commands package
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
