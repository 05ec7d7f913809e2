package tables

import "strings"

// Filter hides every row of the table whose lowercased text does not contain
// the lowercased query. An empty query shows all rows; a missing table is a
// no-op.
func Filter(doc *Document, tableID, query string) {
	table, ok := doc.Table(tableID)
	if !ok {
		return
	}
	query = strings.ToLower(query)
	for _, row := range table.Rows {
		row.Hidden = !strings.Contains(strings.ToLower(row.Text()), query)
	}
}
