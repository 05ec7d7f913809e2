package overview

import (
	core "github.com/goliatone/go-overview/components/overview"
)

// Controller exposes the underlying components/overview.Controller type.
type Controller = core.Controller

// Options re-export for convenience.
type Options = core.Options

// Row, Aggregate and Query describe the upstream payload.
type (
	Row       = core.Row
	Aggregate = core.Aggregate
	Query     = core.Query
)

// AggregateClient fetches aggregates from the upstream API.
type AggregateClient = core.AggregateClient

// NewController proxies to the internal constructor.
func NewController(opts Options) *Controller {
	return core.NewController(opts)
}
