package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	overview "github.com/goliatone/go-overview/components/overview"
)

// ResizeInput carries the new chart container width of a page.
type ResizeInput struct {
	SessionID string `json:"session_id" validate:"required"`
	Width     string `json:"width"`
}

// ResizeCommand asks every chart of a page to recompute its layout.
type ResizeCommand struct {
	pages     PageResolver
	telemetry overview.Telemetry
}

// NewResizeCommand creates the command.
func NewResizeCommand(pages PageResolver, telemetry overview.Telemetry) *ResizeCommand {
	return &ResizeCommand{pages: pages, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResizeInput] = (*ResizeCommand)(nil)

// Execute delegates to Controller.Resize.
func (c *ResizeCommand) Execute(ctx context.Context, msg ResizeInput) error {
	page, err := resolve(c.pages, msg.SessionID)
	if err != nil {
		return err
	}
	page.Resize(ctx, msg.Width)
	c.telemetry.Record(ctx, "overview.command.resize", map[string]any{
		"session_id": msg.SessionID,
		"width":      msg.Width,
	})
	return nil
}
