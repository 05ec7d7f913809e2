package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	overview "github.com/goliatone/go-overview/components/overview"
)

type snapshotCmd struct {
	Turma string `help:"Select this turma chip after the initial load."`
}

func (cmd *snapshotCmd) Run(ctx context.Context, app *cli) error {
	rt, err := newRuntime(app.Config)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl, err := loadPage(ctx, rt, cmd.Turma)
	if err != nil {
		return err
	}
	return writeState(os.Stdout, ctrl.State())
}

type exportCmd struct {
	Turma string `help:"Select this turma chip before exporting."`
	Out   string `short:"o" type:"path" default:"visao-geral.xlsx" help:"Output XLSX path."`
}

func (cmd *exportCmd) Run(ctx context.Context, app *cli) error {
	rt, err := newRuntime(app.Config)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl, err := loadPage(ctx, rt, cmd.Turma)
	if err != nil {
		return err
	}
	file, err := os.Create(cmd.Out)
	if err != nil {
		return fmt.Errorf("overview: create %s: %w", cmd.Out, err)
	}
	defer file.Close()
	if err := ctrl.Export(file); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote %s\n", cmd.Out)
	return nil
}

// loadPage runs the page-load sequence once and optionally selects a chip.
func loadPage(ctx context.Context, rt *runtime, turma string) (*overview.Controller, error) {
	opts := rt.pageOptions(nil)
	opts.SessionID = overview.NewSessionID()
	ctrl := overview.NewController(opts)
	if err := ctrl.BuildChips(ctx); err != nil {
		return nil, err
	}
	if turma != "" {
		return ctrl, ctrl.SelectChip(ctx, turma)
	}
	return ctrl, ctrl.LoadData(ctx, "")
}

func writeState(w io.Writer, state overview.ViewState) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(state)
}
