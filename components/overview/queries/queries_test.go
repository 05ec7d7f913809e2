package queries

import (
	"context"
	"errors"
	"testing"

	overview "github.com/goliatone/go-overview/components/overview"
	"github.com/goliatone/go-overview/components/overview/commands"
)

type stubLookup struct {
	pages map[string]*overview.Controller
	calls int
}

func (s *stubLookup) Lookup(id string) (*overview.Controller, bool) {
	s.calls++
	ctrl, ok := s.pages[id]
	return ctrl, ok
}

type staticClient overview.Aggregate

func (c staticClient) FetchAggregate(context.Context, overview.Query) (overview.Aggregate, error) {
	return overview.Aggregate(c), nil
}

func loadedPage(t *testing.T) *overview.Controller {
	t.Helper()
	client := staticClient{Rows: []overview.Row{{Professor: "Ana", Turma: "1/2025"}, {Professor: "Bia", Turma: "2/2024"}}}
	ctrl := overview.NewController(overview.Options{SessionID: "s1", Client: client})
	ctrl.Init(context.Background())
	return ctrl
}

func TestStateQuery(t *testing.T) {
	pages := &stubLookup{pages: map[string]*overview.Controller{"s1": loadedPage(t)}}
	state, err := NewStateQuery(pages).Query(context.Background(), StateInput{SessionID: "s1"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if state.Count != "2 registro(s)" {
		t.Fatalf("unexpected count %q", state.Count)
	}
	if pages.calls != 1 {
		t.Fatalf("expected 1 lookup, got %d", pages.calls)
	}
}

func TestStateQueryUnknownSession(t *testing.T) {
	_, err := NewStateQuery(&stubLookup{}).Query(context.Background(), StateInput{SessionID: "missing"})
	if !errors.Is(err, commands.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestChipsQuery(t *testing.T) {
	pages := &stubLookup{pages: map[string]*overview.Controller{"s1": loadedPage(t)}}
	chips, err := NewChipsQuery(pages).Query(context.Background(), StateInput{SessionID: "s1"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(chips) != 3 {
		t.Fatalf("expected 3 chips, got %d", len(chips))
	}
	if chips[1].Value != "2/2024" || !chips[0].Active {
		t.Fatalf("unexpected chips %+v", chips)
	}
}

func TestChipsQueryWithoutLookup(t *testing.T) {
	if _, err := NewChipsQuery(nil).Query(context.Background(), StateInput{SessionID: "s1"}); err == nil {
		t.Fatalf("expected error without lookup")
	}
}
