package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	overview "github.com/goliatone/go-overview/components/overview"
)

// SelectChipInput activates the chip bound to Turma on a page session.
type SelectChipInput struct {
	SessionID string `json:"session_id" validate:"required"`
	Turma     string `json:"turma"`
}

// SelectChipCommand switches the active chip and reloads the page data.
type SelectChipCommand struct {
	pages     PageResolver
	telemetry overview.Telemetry
}

// NewSelectChipCommand creates the command.
func NewSelectChipCommand(pages PageResolver, telemetry overview.Telemetry) *SelectChipCommand {
	return &SelectChipCommand{pages: pages, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectChipInput] = (*SelectChipCommand)(nil)

// Execute delegates to Controller.SelectChip.
func (c *SelectChipCommand) Execute(ctx context.Context, msg SelectChipInput) error {
	page, err := resolve(c.pages, msg.SessionID)
	if err != nil {
		return err
	}
	if err := page.SelectChip(ctx, msg.Turma); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "overview.command.select_chip", map[string]any{
		"session_id": msg.SessionID,
		"turma":      msg.Turma,
	})
	return nil
}
