package main

import (
	"context"
	"os"

	"github.com/ezoic/houseprice/cmd/housing/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// errors are printed by the printer package
	if err := commands.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
