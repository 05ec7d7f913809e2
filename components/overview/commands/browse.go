package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	overview "github.com/goliatone/go-overview/components/overview"
)

// BrowseInput filters or pages the results table of a page session.
type BrowseInput struct {
	SessionID string `json:"session_id" validate:"required"`
	Query     string `json:"query"`
	Page      int    `json:"page" validate:"gte=0"`
}

// BrowseCommand applies the table filter or paginator to a page.
type BrowseCommand struct {
	pages     PageResolver
	telemetry overview.Telemetry
}

// NewBrowseCommand creates the command.
func NewBrowseCommand(pages PageResolver, telemetry overview.Telemetry) *BrowseCommand {
	return &BrowseCommand{pages: pages, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[BrowseInput] = (*BrowseCommand)(nil)

// Execute delegates to Controller.Browse.
func (c *BrowseCommand) Execute(ctx context.Context, msg BrowseInput) error {
	page, err := resolve(c.pages, msg.SessionID)
	if err != nil {
		return err
	}
	page.Browse(msg.Query, msg.Page)
	c.telemetry.Record(ctx, "overview.command.browse", map[string]any{
		"session_id": msg.SessionID,
		"query":      msg.Query,
		"page":       msg.Page,
	})
	return nil
}
