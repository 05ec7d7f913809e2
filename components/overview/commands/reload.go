package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	overview "github.com/goliatone/go-overview/components/overview"
)

// ReloadInput reloads a page session filtered by Turma (empty = all).
type ReloadInput struct {
	SessionID string `json:"session_id" validate:"required"`
	Turma     string `json:"turma"`
}

// ReloadCommand refetches the aggregate for a page without touching chips.
type ReloadCommand struct {
	pages     PageResolver
	telemetry overview.Telemetry
}

// NewReloadCommand creates the command.
func NewReloadCommand(pages PageResolver, telemetry overview.Telemetry) *ReloadCommand {
	return &ReloadCommand{pages: pages, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReloadInput] = (*ReloadCommand)(nil)

// Execute delegates to Controller.LoadData.
func (c *ReloadCommand) Execute(ctx context.Context, msg ReloadInput) error {
	page, err := resolve(c.pages, msg.SessionID)
	if err != nil {
		return err
	}
	if err := page.LoadData(ctx, msg.Turma); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "overview.command.reload", map[string]any{
		"session_id": msg.SessionID,
		"turma":      msg.Turma,
	})
	return nil
}
