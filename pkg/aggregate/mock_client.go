package aggregate

import (
	"context"
	"slices"
	"sync"

	overview "github.com/goliatone/go-overview/components/overview"
)

// MockClient serves an in-memory aggregate for local demos and tests. Rows are
// filtered by turma and certificate flag; series are recomputed from them.
type MockClient struct {
	mu   sync.RWMutex
	rows []overview.Row
	err  error
}

var _ overview.AggregateClient = (*MockClient)(nil)

// NewMockClient builds a mock client seeded with rows.
func NewMockClient(rows []overview.Row) *MockClient {
	return &MockClient{rows: slices.Clone(rows)}
}

// SetRows replaces the fixture rows.
func (c *MockClient) SetRows(rows []overview.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = slices.Clone(rows)
}

// FailWith makes subsequent fetches return err. Nil restores success.
func (c *MockClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// FetchAggregate implements overview.AggregateClient.
func (c *MockClient) FetchAggregate(_ context.Context, query overview.Query) (overview.Aggregate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return overview.Aggregate{}, c.err
	}
	rows := make([]overview.Row, 0, len(c.rows))
	for _, row := range c.rows {
		if query.Turma != "" && row.Turma != query.Turma {
			continue
		}
		if query.OnlyCertified && row.Status != StatusCertified {
			continue
		}
		rows = append(rows, row)
	}
	return overview.Aggregate{
		PorDDZ:    countBy(rows, func(r overview.Row) string { return r.DDZ }),
		PorEscola: countBy(rows, func(r overview.Row) string { return r.Escola }),
		PorAno:    countBy(rows, func(r overview.Row) string { return r.Ano }),
		Rows:      rows,
	}, nil
}

// Certification statuses reported in the status column.
const (
	StatusCertified    = "CERTIFICADO"
	StatusNotCertified = "NAO_CERTIFICADO"
)

func countBy(rows []overview.Row, key func(overview.Row) string) []overview.SeriesPoint {
	counts := map[string]float64{}
	labels := make([]string, 0)
	for _, row := range rows {
		label := key(row)
		if _, ok := counts[label]; !ok {
			labels = append(labels, label)
		}
		counts[label]++
	}
	slices.Sort(labels)
	out := make([]overview.SeriesPoint, len(labels))
	for i, label := range labels {
		out[i] = overview.SeriesPoint{Label: label, Value: counts[label]}
	}
	return out
}

// DemoRows returns a small fixture used by the CLI demo mode.
func DemoRows() []overview.Row {
	return []overview.Row{
		{DDZ: "Norte", Escola: "EM Rio Negro", Professor: "Ana Souza", Ano: "2025", Turma: "1/2025", HasCert: true, CertID: "101", Status: StatusCertified},
		{DDZ: "Norte", Escola: "EM Rio Negro", Professor: "Bruno Lima", Ano: "2025", Turma: "2/2025", Status: StatusNotCertified},
		{DDZ: "Sul", Escola: "EM Tarumã", Professor: "Carla Dias", Ano: "2024", Turma: "3/2024", HasCert: true, CertID: "87", Status: StatusCertified},
		{DDZ: "Leste", Escola: "EM Puraquequara", Professor: "Diego Alves", Ano: "2025", Turma: "1/2025", Status: StatusNotCertified},
		{DDZ: "Oeste", Escola: "EM Ponta Negra", Professor: "Elisa Rocha", Ano: "2024", Turma: "1/2024", HasCert: true, CertID: "64", Status: StatusCertified},
	}
}
