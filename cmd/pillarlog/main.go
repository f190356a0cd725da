package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"pillarlog/internal/cli"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path"`

	Serve   cli.ServeCmd   `cmd:"" help:"Run the HTTP API server." default:"1"`
	Init    cli.InitCmd    `cmd:"" help:"Initialize storage."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Audit the stored schedule for invariant violations."`
	Summary cli.SummaryCmd `cmd:"" help:"Print the dashboard overview."`
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name("pillarlog"),
		kong.Description("Time allocation and scheduling engine for the three life pillars"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	appCtx := &cli.Context{ConfigPath: CLI.Config}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
