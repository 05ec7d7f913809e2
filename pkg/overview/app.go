package overview

import (
	"time"

	router "github.com/goliatone/go-router"

	core "github.com/goliatone/go-overview/components/overview"
	"github.com/goliatone/go-overview/components/overview/commands"
	"github.com/goliatone/go-overview/components/overview/gorouter"
	"github.com/goliatone/go-overview/components/overview/httpapi"
	"github.com/goliatone/go-overview/components/overview/queries"
)

// AppOptions configures the shared pieces of an overview deployment.
type AppOptions struct {
	// Page holds the per-session controller options. SessionID and
	// RefreshHook are set by the app.
	Page       Options
	SessionTTL time.Duration
}

// App bundles the session store, refresh hub and commanders so transports
// (net/http or go-router) share one set of page sessions.
type App struct {
	Sessions *core.SessionStore
	Hub      *core.Hub
	Commands gorouter.Commands
	Queries  gorouter.Queries
}

// NewApp wires sessions, hub and commanders.
func NewApp(opts AppOptions) *App {
	hub := core.NewHub()
	page := opts.Page
	store := core.NewSessionStore(func(id string) *core.Controller {
		o := page
		o.SessionID = id
		o.RefreshHook = hub
		return core.NewController(o)
	}, opts.SessionTTL)

	pages := commands.StoreResolver{Store: store}
	telemetry := page.Telemetry
	return &App{
		Sessions: store,
		Hub:      hub,
		Commands: gorouter.Commands{
			SelectChip: commands.NewSelectChipCommand(pages, telemetry),
			Reload:     commands.NewReloadCommand(pages, telemetry),
			Resize:     commands.NewResizeCommand(pages, telemetry),
			Browse:     commands.NewBrowseCommand(pages, telemetry),
		},
		Queries: gorouter.Queries{
			State: queries.NewStateQuery(store),
			Chips: queries.NewChipsQuery(store),
		},
	}
}

// Handlers returns net/http handlers bound to the app.
func (a *App) Handlers() *httpapi.Handlers {
	return &httpapi.Handlers{
		Sessions:   a.Sessions,
		Hub:        a.Hub,
		SelectChip: a.Commands.SelectChip,
		Reload:     a.Commands.Reload,
		Resize:     a.Commands.Resize,
		Browse:     a.Commands.Browse,
		State:      a.Queries.State,
		Chips:      a.Queries.Chips,
	}
}

// RouterConfig returns a go-router registration config bound to the app.
func RouterConfig[T any](a *App, r router.Router[T], basePath string) gorouter.Config[T] {
	return gorouter.Config[T]{
		Router:   r,
		Sessions: a.Sessions,
		Commands: a.Commands,
		Queries:  a.Queries,
		Hub:      a.Hub,
		BasePath: basePath,
	}
}
