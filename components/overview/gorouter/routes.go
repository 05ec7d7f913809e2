package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	overview "github.com/goliatone/go-overview/components/overview"
	"github.com/goliatone/go-overview/components/overview/commands"
	"github.com/goliatone/go-overview/components/overview/httpapi"
	"github.com/goliatone/go-overview/components/overview/queries"
)

// Commands groups the commanders behind the POST endpoints.
type Commands struct {
	SelectChip gocommand.Commander[commands.SelectChipInput]
	Reload     gocommand.Commander[commands.ReloadInput]
	Resize     gocommand.Commander[commands.ResizeInput]
	Browse     gocommand.Commander[commands.BrowseInput]
}

// Queries groups the read-only queriers behind the GET endpoints.
type Queries struct {
	State gocommand.Querier[queries.StateInput, overview.ViewState]
	Chips gocommand.Querier[queries.StateInput, []overview.Chip]
}

// Config wires go-router with overview sessions, commands and the refresh hub.
type Config[T any] struct {
	Router   router.Router[T]
	Sessions *overview.SessionStore
	Commands Commands
	Queries  Queries
	Hub      *overview.Hub
	BasePath string
	Routes   RouteConfig
}

// RouteConfig customizes the relative paths used for overview endpoints.
type RouteConfig struct {
	HTML      string
	State     string
	Table     string
	Chips     string
	Reload    string
	Resize    string
	Browse    string
	Export    string
	WebSocket string
}

// Register mounts overview routes (HTML, JSON, commands, export, WebSocket) on
// a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Sessions == nil {
		return errors.New("gorouter: session store is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/visao-geral"
	}
	pages := &pageResolver{sessions: cfg.Sessions}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		ctrl := pages.session(ctx)
		var buf bytes.Buffer
		if err := ctrl.RenderPage(&buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		ctrl := pages.session(ctx)
		if cfg.Queries.State == nil {
			return ctx.JSON(http.StatusOK, ctrl.State())
		}
		state, err := cfg.Queries.State.Query(ctx.Context(), queries.StateInput{SessionID: ctrl.SessionID()})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, state)
	}))

	if cfg.Queries.Chips != nil {
		group.Get(routes.Chips, router.WrapHandler(func(ctx router.Context) error {
			ctrl := pages.session(ctx)
			chips, err := cfg.Queries.Chips.Query(ctx.Context(), queries.StateInput{SessionID: ctrl.SessionID()})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, chips)
		}))
	}

	group.Get(routes.Table, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := pages.session(ctx).RenderTable(&buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := pages.session(ctx).Export(&buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.SetHeader("Content-Disposition", `attachment; filename="visao-geral.xlsx"`)
		return ctx.Send(buf.Bytes())
	}))

	registerCommands(group, cfg.Commands, routes)

	if cfg.Hub != nil {
		registerWebSocket(group, cfg.Hub, routes.WebSocket)
	}
	return nil
}

func registerCommands[T any](r router.Router[T], cmds Commands, routes RouteConfig) {
	validate := validator.New()
	if cmds.SelectChip != nil {
		r.Post(routes.Chips, router.WrapHandler(func(ctx router.Context) error {
			var payload commands.SelectChipInput
			return execute(ctx, validate, &payload, func() error {
				return cmds.SelectChip.Execute(ctx.Context(), payload)
			})
		}))
	}
	if cmds.Reload != nil {
		r.Post(routes.Reload, router.WrapHandler(func(ctx router.Context) error {
			var payload commands.ReloadInput
			return execute(ctx, validate, &payload, func() error {
				return cmds.Reload.Execute(ctx.Context(), payload)
			})
		}))
	}
	if cmds.Resize != nil {
		r.Post(routes.Resize, router.WrapHandler(func(ctx router.Context) error {
			var payload commands.ResizeInput
			return execute(ctx, validate, &payload, func() error {
				return cmds.Resize.Execute(ctx.Context(), payload)
			})
		}))
	}
	if cmds.Browse != nil {
		r.Post(routes.Browse, router.WrapHandler(func(ctx router.Context) error {
			var payload commands.BrowseInput
			return execute(ctx, validate, &payload, func() error {
				return cmds.Browse.Execute(ctx.Context(), payload)
			})
		}))
	}
}

func execute(ctx router.Context, validate *validator.Validate, payload commands.SessionTarget, run func() error) error {
	if err := json.Unmarshal(ctx.Body(), payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	if payload.Session() == "" {
		payload.SetSession(sessionFromCookies(ctx.Header("Cookie")))
	}
	if err := validate.Struct(payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	if err := run(); err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// registerWebSocket streams the refresh events of the session named by the
// "session" query parameter (or the session cookie) captured before upgrade.
func registerWebSocket[T any](r router.Router[T], hub *overview.Hub, path string) {
	cfg := router.DefaultWebSocketConfig()
	cfg.OnPreUpgrade = func(ctx router.Context) (router.UpgradeData, error) {
		id := strings.TrimSpace(ctx.Query("session"))
		if id == "" {
			id = sessionFromCookies(ctx.Header("Cookie"))
		}
		return router.UpgradeData{sessionUpgradeKey: id}, nil
	}
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hub.Subscribe(upgradeSession(ws))
		defer cancel()
		closed := overview.ReadUntilClosed(ws.ReadMessage)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-closed:
				return nil
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

const sessionUpgradeKey = "session_id"

func upgradeSession(ws router.WebSocketContext) string {
	id, _ := router.GetUpgradeDataWithDefault(ws, sessionUpgradeKey, "").(string)
	return id
}

type pageResolver struct {
	sessions *overview.SessionStore
}

// session returns the caller's page, starting and initializing a new one when
// the request carries no known session.
func (p *pageResolver) session(ctx router.Context) *overview.Controller {
	id := strings.TrimSpace(ctx.Query("session"))
	if id == "" {
		id = sessionFromCookies(ctx.Header("Cookie"))
	}
	ctrl, created := p.sessions.Get(id)
	if created {
		cookie := &http.Cookie{
			Name:     overview.SessionCookie,
			Value:    ctrl.SessionID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		ctx.SetHeader("Set-Cookie", cookie.String())
		ctrl.Init(ctx.Context())
	}
	return ctrl
}

func sessionFromCookies(header string) string {
	if header == "" {
		return ""
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, cookie := range cookies {
		if cookie.Name == overview.SessionCookie {
			return cookie.Value
		}
	}
	return ""
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.State == "" {
		routes.State = "/state"
	}
	if routes.Table == "" {
		routes.Table = "/table"
	}
	if routes.Chips == "" {
		routes.Chips = "/chips"
	}
	if routes.Reload == "" {
		routes.Reload = "/reload"
	}
	if routes.Resize == "" {
		routes.Resize = "/resize"
	}
	if routes.Browse == "" {
		routes.Browse = "/browse"
	}
	if routes.Export == "" {
		routes.Export = "/export.xlsx"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
