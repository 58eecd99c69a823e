package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/reelforge/reelforge/internal/ctl"
)

func main() {
	if err := ctl.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
