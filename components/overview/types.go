package overview

import (
	"context"
	"fmt"
)

// Query selects the slice of data requested from the aggregate endpoint.
type Query struct {
	Turma         string
	OnlyCertified bool
}

// SeriesPoint is one label/value pair of a grouped count.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Row is a single certification record as displayed in the results table.
type Row struct {
	DDZ       string `json:"ddz"`
	Escola    string `json:"escola"`
	Professor string `json:"professor"`
	Ano       string `json:"ano"`
	Turma     string `json:"turma"`
	HasCert   bool   `json:"has_cert"`
	CertID    string `json:"cert_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Aggregate is the decoded payload of the aggregate endpoint. Missing series
// are empty slices.
type Aggregate struct {
	PorDDZ    []SeriesPoint `json:"por_ddz"`
	PorEscola []SeriesPoint `json:"por_escola"`
	PorAno    []SeriesPoint `json:"por_ano"`
	Rows      []Row         `json:"rows"`
}

// AggregateClient fetches grouped statistics and rows from the upstream API.
type AggregateClient interface {
	FetchAggregate(ctx context.Context, query Query) (Aggregate, error)
}

// AggregateClientFunc adapts a function into an AggregateClient.
type AggregateClientFunc func(ctx context.Context, query Query) (Aggregate, error)

// FetchAggregate calls f.
func (f AggregateClientFunc) FetchAggregate(ctx context.Context, query Query) (Aggregate, error) {
	return f(ctx, query)
}

// StatusError reports a non-success HTTP status from the upstream API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// RefreshEvent describes a completed reload of a page session.
type RefreshEvent struct {
	SessionID string `json:"session_id"`
	Sequence  uint64 `json:"sequence"`
	Turma     string `json:"turma"`
	Count     int    `json:"count"`
	Reason    string `json:"reason"`
}

// RefreshHook notifies transports (WebSocket/SSE) about page refreshes.
type RefreshHook interface {
	PageUpdated(ctx context.Context, event RefreshEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) PageUpdated(context.Context, RefreshEvent) error { return nil }
