package tables

import "strings"

// Document holds the tables of a rendered page keyed by element id, plus the
// navigation blocks inserted after each of them.
type Document struct {
	tables map[string]*Table
	navs   map[string][]*Nav
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		tables: map[string]*Table{},
		navs:   map[string][]*Nav{},
	}
}

// AddTable registers a table under its id, replacing any previous one.
func (d *Document) AddTable(t *Table) {
	if d == nil || t == nil || t.ID == "" {
		return
	}
	d.tables[t.ID] = t
}

// Table looks up a table by id.
func (d *Document) Table(id string) (*Table, bool) {
	if d == nil {
		return nil, false
	}
	t, ok := d.tables[id]
	return t, ok
}

// NavsAfter returns the navigation blocks inserted after the table, in
// insertion order.
func (d *Document) NavsAfter(id string) []*Nav {
	if d == nil {
		return nil
	}
	return append([]*Nav(nil), d.navs[id]...)
}

// RemoveNavs drops the navigation blocks inserted after the table.
func (d *Document) RemoveNavs(id string) {
	if d == nil {
		return
	}
	delete(d.navs, id)
}

func (d *Document) insertAfter(id string, nav *Nav) {
	d.navs[id] = append(d.navs[id], nav)
}

// Table is a body of rows addressed by id.
type Table struct {
	ID      string
	Columns []string
	Rows    []*Row
}

// NewTable builds an empty table.
func NewTable(id string, columns ...string) *Table {
	return &Table{ID: id, Columns: columns}
}

// Clear drops every body row.
func (t *Table) Clear() {
	t.Rows = nil
}

// Append adds a visible row built from the given cells.
func (t *Table) Append(cells ...Cell) *Row {
	row := &Row{Cells: cells}
	t.Rows = append(t.Rows, row)
	return row
}

// VisibleRows returns the rows currently shown.
func (t *Table) VisibleRows() []*Row {
	out := make([]*Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !row.Hidden {
			out = append(out, row)
		}
	}
	return out
}

// Row is a single body row.
type Row struct {
	Cells  []Cell
	Hidden bool
}

// Text returns the row's visible text, cells separated by tabs.
func (r *Row) Text() string {
	parts := make([]string, len(r.Cells))
	for i, cell := range r.Cells {
		parts[i] = cell.Text
	}
	return strings.Join(parts, "\t")
}

// Cell is a table cell. Href turns the cell into a link; Muted marks
// placeholder content.
type Cell struct {
	Text  string
	Href  string
	Title string
	Muted bool
	Align string
}
