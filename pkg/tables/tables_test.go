package tables

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T, rows int) *Document {
	t.Helper()
	doc := NewDocument()
	table := NewTable("tabela", "ddz", "escola")
	for i := 0; i < rows; i++ {
		table.Append(Cell{Text: fmt.Sprintf("DDZ %d", i)}, Cell{Text: fmt.Sprintf("Escola %d", i)})
	}
	doc.AddTable(table)
	return doc
}

func visibleIndexes(table *Table) []int {
	var out []int
	for i, row := range table.Rows {
		if !row.Hidden {
			out = append(out, i)
		}
	}
	return out
}

func TestFilterMatchesCaseInsensitive(t *testing.T) {
	doc := NewDocument()
	table := NewTable("tabela")
	table.Append(Cell{Text: "Norte"}, Cell{Text: "Escola Azul"})
	table.Append(Cell{Text: "Sul"}, Cell{Text: "Escola Verde"})
	doc.AddTable(table)

	Filter(doc, "tabela", "AZUL")
	assert.Equal(t, []int{0}, visibleIndexes(table))

	Filter(doc, "tabela", "escola")
	assert.Equal(t, []int{0, 1}, visibleIndexes(table))

	Filter(doc, "tabela", "")
	assert.Equal(t, []int{0, 1}, visibleIndexes(table))
}

func TestFilterMissingTableIsNoop(t *testing.T) {
	doc := newDoc(t, 2)
	Filter(doc, "missing", "x")
	table, _ := doc.Table("tabela")
	assert.Len(t, table.VisibleRows(), 2)
}

func TestPaginateTotalPages(t *testing.T) {
	cases := []struct {
		rows, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 7, 4},
	}
	for _, tc := range cases {
		doc := newDoc(t, tc.rows)
		p := Paginate(doc, "tabela", tc.size)
		require.NotNil(t, p)
		assert.Equal(t, tc.want, p.TotalPages(), "rows=%d size=%d", tc.rows, tc.size)
	}
}

func TestPaginateDefaultsPageSize(t *testing.T) {
	doc := newDoc(t, 12)
	p := Paginate(doc, "tabela", 0)
	require.NotNil(t, p)
	assert.Equal(t, DefaultPageSize, p.PageSize())
	assert.Equal(t, 2, p.TotalPages())
}

func TestShowPageDisplaysExactSlice(t *testing.T) {
	doc := newDoc(t, 23)
	p := Paginate(doc, "tabela", 5)
	table, _ := doc.Table("tabela")
	for k := 1; k <= p.TotalPages(); k++ {
		p.ShowPage(k)
		var want []int
		for i := (k - 1) * 5; i < k*5 && i < 23; i++ {
			want = append(want, i)
		}
		assert.Equal(t, want, visibleIndexes(table), "page %d", k)
	}
}

func TestPrevNextStayInBounds(t *testing.T) {
	doc := newDoc(t, 21)
	p := Paginate(doc, "tabela", 10)
	assert.Equal(t, "Página 1/3", p.Indicator())

	assert.False(t, p.Prev())
	assert.Equal(t, 1, p.Page())

	assert.True(t, p.Next())
	assert.True(t, p.Next())
	assert.Equal(t, "Página 3/3", p.Nav().Indicator())
	assert.False(t, p.Next())
	assert.Equal(t, 3, p.Page())

	assert.True(t, p.Nav().Prev())
	assert.Equal(t, 2, p.Page())
}

func TestPaginateInsertsNavAfterTable(t *testing.T) {
	doc := newDoc(t, 3)
	first := Paginate(doc, "tabela", 2)
	second := Paginate(doc, "tabela", 2)

	navs := doc.NavsAfter("tabela")
	require.Len(t, navs, 2)
	assert.Same(t, first.Nav(), navs[0])
	assert.Same(t, second.Nav(), navs[1])
	assert.Equal(t, "Anterior", navs[0].PrevLabel)
	assert.Equal(t, "Próximo", navs[0].NextLabel)
}

func TestPaginateMissingTable(t *testing.T) {
	doc := NewDocument()
	assert.Nil(t, Paginate(doc, "tabela", 10))
	assert.Empty(t, doc.NavsAfter("tabela"))
}
