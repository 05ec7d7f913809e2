package queries

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	overview "github.com/goliatone/go-overview/components/overview"
	"github.com/goliatone/go-overview/components/overview/commands"
)

// StateInput addresses one page session.
type StateInput struct {
	SessionID string `json:"session_id" validate:"required"`
}

type pageLookup interface {
	Lookup(sessionID string) (*overview.Controller, bool)
}

// StateQuery returns the JSON snapshot of a page session.
type StateQuery struct {
	pages pageLookup
}

// NewStateQuery builds the query.
func NewStateQuery(pages pageLookup) *StateQuery {
	return &StateQuery{pages: pages}
}

var _ gocommand.Querier[StateInput, overview.ViewState] = (*StateQuery)(nil)

// Query resolves the session and snapshots its state.
func (q *StateQuery) Query(_ context.Context, msg StateInput) (overview.ViewState, error) {
	ctrl, err := lookup(q.pages, msg.SessionID)
	if err != nil {
		return overview.ViewState{}, err
	}
	return ctrl.State(), nil
}

// ChipsQuery lists the turma chips of a page session.
type ChipsQuery struct {
	pages pageLookup
}

// NewChipsQuery builds the query.
func NewChipsQuery(pages pageLookup) *ChipsQuery {
	return &ChipsQuery{pages: pages}
}

var _ gocommand.Querier[StateInput, []overview.Chip] = (*ChipsQuery)(nil)

// Query returns the chips in display order, the active one flagged.
func (q *ChipsQuery) Query(_ context.Context, msg StateInput) ([]overview.Chip, error) {
	ctrl, err := lookup(q.pages, msg.SessionID)
	if err != nil {
		return nil, err
	}
	chips := ctrl.State().Chips
	if chips == nil {
		chips = []overview.Chip{}
	}
	return chips, nil
}

func lookup(pages pageLookup, sessionID string) (*overview.Controller, error) {
	if pages == nil {
		return nil, fmt.Errorf("queries: page lookup not configured")
	}
	ctrl, ok := pages.Lookup(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", commands.ErrSessionNotFound, sessionID)
	}
	return ctrl, nil
}
