package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	overview "github.com/goliatone/go-overview/components/overview"
)

type manifestCmd struct {
	Init  manifestInitCmd  `cmd:"" help:"Write the default page manifest."`
	Check manifestCheckCmd `cmd:"" help:"Validate a page manifest."`
}

type manifestInitCmd struct {
	Out       string `required:"" type:"path" help:"Destination YAML path."`
	PageSize  int    `help:"Rows per table page (0 disables pagination)."`
	Overwrite bool   `help:"Replace an existing file."`
}

func (cmd *manifestInitCmd) Run(context.Context) error {
	if _, err := os.Stat(cmd.Out); err == nil && !cmd.Overwrite {
		return fmt.Errorf("overview: manifest %s already exists (use --overwrite)", cmd.Out)
	}
	doc := overview.DefaultManifest()
	doc.Page.PageSize = cmd.PageSize
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cmd.Out), 0o755); err != nil {
		return fmt.Errorf("overview: mkdir %s: %w", filepath.Dir(cmd.Out), err)
	}
	file, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("overview: create manifest %s: %w", cmd.Out, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("overview: write manifest: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote %s\n", cmd.Out)
	return nil
}

type manifestCheckCmd struct {
	Path string `arg:"" type:"existingfile" help:"Manifest to validate."`
}

func (cmd *manifestCheckCmd) Run(context.Context) error {
	doc, err := overview.ReadManifest(cmd.Path)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s: %d chart(s), table %q, chips %q\n", cmd.Path, len(doc.Charts), doc.Page.Table, doc.Page.Chips)
	return nil
}
