package overview

// ViewState is a JSON-friendly snapshot of a page session.
type ViewState struct {
	SessionID   string          `json:"session_id"`
	Sequence    uint64          `json:"sequence"`
	ActiveTurma string          `json:"active_turma"`
	Chips       []Chip          `json:"chips"`
	Count       string          `json:"count,omitempty"`
	Rows        []Row           `json:"rows"`
	Table       []TableRowState `json:"table,omitempty"`
	Charts      []ChartInstance `json:"charts"`
	Pagination  *PageState      `json:"pagination,omitempty"`
}

// TableRowState mirrors one body row of the results table.
type TableRowState struct {
	Cells  []string `json:"cells"`
	Href   string   `json:"href,omitempty"`
	Hidden bool     `json:"hidden"`
}

// PageState describes the paginator position.
type PageState struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	PageSize   int    `json:"page_size"`
	Indicator  string `json:"indicator"`
}

// State returns a snapshot of the page.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := ViewState{
		SessionID:   c.opts.SessionID,
		Sequence:    c.applied,
		ActiveTurma: c.activeTurma,
		Chips:       append([]Chip(nil), c.chips...),
		Count:       c.count,
		Rows:        append([]Row(nil), c.rows...),
		Charts:      c.charts.Snapshot(),
	}
	if table, ok := c.doc.Table(c.opts.Manifest.Page.Table); ok {
		state.Table = make([]TableRowState, 0, len(table.Rows))
		for _, row := range table.Rows {
			entry := TableRowState{Hidden: row.Hidden, Cells: make([]string, len(row.Cells))}
			for i, cell := range row.Cells {
				entry.Cells[i] = cell.Text
				if cell.Href != "" {
					entry.Href = cell.Href
				}
			}
			state.Table = append(state.Table, entry)
		}
	}
	if c.paginator != nil {
		state.Pagination = &PageState{
			Page:       c.paginator.Page(),
			TotalPages: c.paginator.TotalPages(),
			PageSize:   c.paginator.PageSize(),
			Indicator:  c.paginator.Indicator(),
		}
	}
	return state
}
