// Package main is the entry point for the hydro dashboard TUI.
package main

import "github.com/j-veylop/hydro-dashboard-tui/internal/cli"

func main() {
	cli.Execute()
}
