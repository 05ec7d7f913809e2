package commands

import (
	"context"
	"errors"
	"fmt"

	overview "github.com/goliatone/go-overview/components/overview"
)

// ErrSessionNotFound is returned when a command targets an unknown page session.
var ErrSessionNotFound = errors.New("commands: page session not found")

// Page is the slice of overview.Controller the commands drive.
type Page interface {
	SelectChip(ctx context.Context, value string) error
	LoadData(ctx context.Context, turma string) error
	Resize(ctx context.Context, width string)
	Browse(query string, page int)
}

var _ Page = (*overview.Controller)(nil)

// PageResolver finds the page bound to a session id.
type PageResolver interface {
	Resolve(sessionID string) (Page, error)
}

// StoreResolver resolves pages from a SessionStore without creating sessions.
type StoreResolver struct {
	Store *overview.SessionStore
}

// Resolve implements PageResolver.
func (r StoreResolver) Resolve(sessionID string) (Page, error) {
	if r.Store == nil {
		return nil, errors.New("commands: session store not configured")
	}
	ctrl, ok := r.Store.Lookup(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return ctrl, nil
}

func resolve(resolver PageResolver, sessionID string) (Page, error) {
	if resolver == nil {
		return nil, errors.New("commands: page resolver not configured")
	}
	return resolver.Resolve(sessionID)
}

func normalizeTelemetry(t overview.Telemetry) overview.Telemetry {
	if t == nil {
		return overview.LogTelemetry{}
	}
	return t
}

// SessionTarget is implemented by inputs addressed to one page session.
type SessionTarget interface {
	Session() string
	SetSession(id string)
}

func (i *SelectChipInput) Session() string      { return i.SessionID }
func (i *SelectChipInput) SetSession(id string) { i.SessionID = id }
func (i *ReloadInput) Session() string          { return i.SessionID }
func (i *ReloadInput) SetSession(id string)     { i.SessionID = id }
func (i *ResizeInput) Session() string          { return i.SessionID }
func (i *ResizeInput) SetSession(id string)     { i.SessionID = id }
func (i *BrowseInput) Session() string          { return i.SessionID }
func (i *BrowseInput) SetSession(id string)     { i.SessionID = id }
