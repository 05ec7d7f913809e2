package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Config   string      `short:"c" type:"path" help:"Path to config.yaml (defaults to ./config/config.yaml or ./config.yaml)."`
	Serve    serveCmd    `cmd:"" help:"Serve the Visão Geral page."`
	Snapshot snapshotCmd `cmd:"" help:"Load the page once and print its JSON state."`
	Export   exportCmd   `cmd:"" help:"Load the page once and write the results table as XLSX."`
	Manifest manifestCmd `cmd:"" help:"Inspect or scaffold page manifests."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("overview"),
		kong.Description("Visão Geral certification dashboard."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&app)
	kctx.FatalIfErrorf(err)
}
