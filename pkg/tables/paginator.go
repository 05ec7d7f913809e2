package tables

import "fmt"

// DefaultPageSize is used when Paginate receives a non-positive size.
const DefaultPageSize = 10

// Nav is the navigation block placed after a paginated table.
type Nav struct {
	PrevLabel string
	NextLabel string
	paginator *Paginator
}

// Indicator returns the "Página x/y" text shown between the buttons.
func (n *Nav) Indicator() string {
	return n.paginator.Indicator()
}

// Prev triggers the previous button.
func (n *Nav) Prev() bool { return n.paginator.Prev() }

// Next triggers the next button.
func (n *Nav) Next() bool { return n.paginator.Next() }

// Paginator slices the rows of a table into fixed-size pages and shows one
// page at a time.
type Paginator struct {
	table      *Table
	pageSize   int
	current    int
	totalPages int
	nav        *Nav
}

// Paginate partitions the table rows into pages, inserts navigation controls
// right after the table and shows page 1. Calling it again for the same table
// inserts another navigation block. A missing table yields nil.
func Paginate(doc *Document, tableID string, pageSize int) *Paginator {
	table, ok := doc.Table(tableID)
	if !ok {
		return nil
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := &Paginator{
		table:      table,
		pageSize:   pageSize,
		totalPages: (len(table.Rows) + pageSize - 1) / pageSize,
	}
	p.nav = &Nav{PrevLabel: "Anterior", NextLabel: "Próximo", paginator: p}
	doc.insertAfter(tableID, p.nav)
	p.ShowPage(1)
	return p
}

// ShowPage displays rows [(page-1)*size, page*size) and hides the rest. The
// page is clamped to [1, TotalPages].
func (p *Paginator) ShowPage(page int) {
	if page > p.totalPages {
		page = p.totalPages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * p.pageSize
	end := start + p.pageSize
	for i, row := range p.table.Rows {
		row.Hidden = i < start || i >= end
	}
	p.current = page
}

// Prev moves one page back. It reports false at the first page.
func (p *Paginator) Prev() bool {
	if p.current <= 1 {
		return false
	}
	p.ShowPage(p.current - 1)
	return true
}

// Next moves one page forward. It reports false at the last page.
func (p *Paginator) Next() bool {
	if p.current >= p.totalPages {
		return false
	}
	p.ShowPage(p.current + 1)
	return true
}

// Indicator renders the current position.
func (p *Paginator) Indicator() string {
	return fmt.Sprintf("Página %d/%d", p.current, p.totalPages)
}

// Page returns the 1-based page currently shown.
func (p *Paginator) Page() int { return p.current }

// TotalPages returns ceil(rows/pageSize); zero for an empty table.
func (p *Paginator) TotalPages() int { return p.totalPages }

// PageSize returns the effective page size after defaulting.
func (p *Paginator) PageSize() int { return p.pageSize }

// Nav returns the navigation block this paginator inserted after its table.
func (p *Paginator) Nav() *Nav { return p.nav }
