package overview

import (
	"errors"
	"fmt"
	"io"
)

var errMissingRenderer = errors.New("overview: renderer not configured")

const (
	pageTemplate  = "overview"
	tableTemplate = "table"
)

// RenderPage renders the full page for the session into out.
func (c *Controller) RenderPage(out io.Writer) error {
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	tableHTML, err := c.renderTable()
	if err != nil {
		return err
	}
	chartsData := make([]map[string]any, 0, len(c.opts.Manifest.Charts))
	for _, chart := range c.opts.Manifest.Charts {
		html, err := c.charts.Render(chart.ID)
		if err != nil {
			return fmt.Errorf("overview: render chart %s: %w", chart.ID, err)
		}
		chartsData = append(chartsData, map[string]any{
			"id":    chart.ID,
			"title": chart.Title,
			"html":  html,
		})
	}

	c.mu.Lock()
	page := c.opts.Manifest.Page
	data := map[string]any{
		"title":        page.Title,
		"session_id":   c.opts.SessionID,
		"chips_id":     page.Chips,
		"chips":        chipsData(c.chips),
		"charts":       chartsData,
		"table_id":     page.Table,
		"table_html":   tableHTML,
		"count_tag_id": page.CountTag,
		"count":        c.count,
		"active_turma": c.activeTurma,
	}
	c.mu.Unlock()

	if _, err := c.opts.Renderer.Render(pageTemplate, data, out); err != nil {
		return fmt.Errorf("overview: render page: %w", err)
	}
	return nil
}

// RenderTable renders the results table body and its navigation.
func (c *Controller) RenderTable(out io.Writer) error {
	html, err := c.renderTable()
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, html)
	return err
}

func (c *Controller) renderTable() (string, error) {
	if c.opts.Renderer == nil {
		return "", errMissingRenderer
	}
	c.mu.Lock()
	id := c.opts.Manifest.Page.Table
	table, ok := c.doc.Table(id)
	if !ok {
		c.mu.Unlock()
		return "", nil
	}
	rows := make([]map[string]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make([]map[string]any, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, map[string]any{
				"text":  cell.Text,
				"href":  cell.Href,
				"title": cell.Title,
				"muted": cell.Muted,
				"align": cell.Align,
			})
		}
		rows = append(rows, map[string]any{
			"cells":  cells,
			"hidden": row.Hidden,
		})
	}
	navs := make([]map[string]any, 0)
	for _, nav := range c.doc.NavsAfter(id) {
		navs = append(navs, map[string]any{
			"prev":      nav.PrevLabel,
			"next":      nav.NextLabel,
			"indicator": nav.Indicator(),
		})
	}
	data := map[string]any{
		"table_id": id,
		"columns":  table.Columns,
		"rows":     rows,
		"navs":     navs,
	}
	c.mu.Unlock()

	html, err := c.opts.Renderer.Render(tableTemplate, data)
	if err != nil {
		return "", fmt.Errorf("overview: render table: %w", err)
	}
	return html, nil
}

func chipsData(chips []Chip) []map[string]any {
	out := make([]map[string]any, 0, len(chips))
	for _, chip := range chips {
		out = append(out, map[string]any{
			"label":  chip.Label,
			"value":  chip.Value,
			"active": chip.Active,
		})
	}
	return out
}
