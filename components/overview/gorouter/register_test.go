package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/gorilla/websocket"

	overview "github.com/goliatone/go-overview/components/overview"
	"github.com/goliatone/go-overview/components/overview/commands"
	"github.com/goliatone/go-overview/components/overview/queries"
)

type fixture struct {
	app   *fiber.App
	store *overview.SessionStore
	hub   *overview.Hub
}

func fixtureClient() overview.AggregateClient {
	return overview.AggregateClientFunc(func(_ context.Context, q overview.Query) (overview.Aggregate, error) {
		if q.Turma == "3/2024" {
			return overview.Aggregate{}, &overview.StatusError{Code: http.StatusServiceUnavailable}
		}
		rows := []overview.Row{
			{Professor: `<b>Ana</b>`, Turma: "1/2025", HasCert: true, CertID: "c1"},
			{Professor: "Bia", Turma: "3/2024"},
		}
		if q.Turma != "" {
			filtered := rows[:0:0]
			for _, row := range rows {
				if row.Turma == q.Turma {
					filtered = append(filtered, row)
				}
			}
			rows = filtered
		}
		return overview.Aggregate{
			PorAno: []overview.SeriesPoint{{Label: "2025", Value: float64(len(rows))}},
			Rows:   rows,
		}, nil
	})
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	renderer, err := overview.NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer returned error: %v", err)
	}
	hub := overview.NewHub()
	store := overview.NewSessionStore(func(id string) *overview.Controller {
		return overview.NewController(overview.Options{
			SessionID:   id,
			Client:      fixtureClient(),
			Renderer:    renderer,
			RefreshHook: hub,
		})
	}, time.Minute)
	pages := commands.StoreResolver{Store: store}

	server := router.NewFiberAdapter()
	err = Register(Config[*fiber.App]{
		Router:   server.Router(),
		Sessions: store,
		Hub:      hub,
		Commands: Commands{
			SelectChip: commands.NewSelectChipCommand(pages, nil),
			Reload:     commands.NewReloadCommand(pages, nil),
			Resize:     commands.NewResizeCommand(pages, nil),
			Browse:     commands.NewBrowseCommand(pages, nil),
		},
		Queries: Queries{
			State: queries.NewStateQuery(store),
			Chips: queries.NewChipsQuery(store),
		},
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	return &fixture{app: server.WrappedRouter(), store: store, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path, body string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := f.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(data)
}

func (f *fixture) openPage(t *testing.T) (*http.Cookie, string) {
	t.Helper()
	resp, body := f.do(t, http.MethodGet, "/visao-geral/", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for page, got %d: %s", resp.StatusCode, body)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == overview.SessionCookie {
			return cookie, body
		}
	}
	t.Fatalf("expected %s cookie on first page load", overview.SessionCookie)
	return nil, ""
}

func (f *fixture) state(t *testing.T, cookie *http.Cookie) overview.ViewState {
	t.Helper()
	resp, body := f.do(t, http.MethodGet, "/visao-geral/state", "", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for state, got %d: %s", resp.StatusCode, body)
	}
	var state overview.ViewState
	if err := json.Unmarshal([]byte(body), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func TestRegisterPageRendersEmbeddedTemplates(t *testing.T) {
	f := newFixture(t)
	_, body := f.openPage(t)

	if f.store.Len() != 1 {
		t.Fatalf("expected one session, got %d", f.store.Len())
	}
	if !strings.Contains(body, `id="tabela"`) {
		t.Fatalf("expected results table in page")
	}
	if !strings.Contains(body, `href="/certificados/c1/download"`) {
		t.Fatalf("expected certificate link in page")
	}
	if strings.Contains(body, "<b>Ana</b>") || !strings.Contains(body, "&lt;b&gt;Ana&lt;/b&gt;") {
		t.Fatalf("expected professor name to be escaped")
	}
	if !strings.Contains(body, "2 registro(s)") {
		t.Fatalf("expected count tag in page")
	}
}

func TestRegisterStateAndChipsQueries(t *testing.T) {
	f := newFixture(t)
	cookie, _ := f.openPage(t)

	state := f.state(t, cookie)
	if state.Count != "2 registro(s)" || len(state.Chips) != 3 {
		t.Fatalf("unexpected state: %+v", state)
	}

	resp, body := f.do(t, http.MethodGet, "/visao-geral/chips", "", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for chips, got %d", resp.StatusCode)
	}
	var chips []overview.Chip
	if err := json.Unmarshal([]byte(body), &chips); err != nil {
		t.Fatalf("decode chips: %v", err)
	}
	if len(chips) != 3 || chips[0].Label != "Todas" || !chips[0].Active {
		t.Fatalf("unexpected chips: %+v", chips)
	}
}

func TestRegisterSelectChipWithCookieSession(t *testing.T) {
	f := newFixture(t)
	cookie, _ := f.openPage(t)

	resp, body := f.do(t, http.MethodPost, "/visao-geral/chips", `{"turma":"1/2025"}`, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for chip select, got %d: %s", resp.StatusCode, body)
	}
	state := f.state(t, cookie)
	if state.ActiveTurma != "1/2025" || state.Count != "1 registro(s)" {
		t.Fatalf("unexpected state after chip select: %+v", state)
	}

	resp, body = f.do(t, http.MethodGet, "/visao-geral/table", "", cookie)
	if resp.StatusCode != http.StatusOK || strings.Contains(body, "Bia") {
		t.Fatalf("expected filtered table fragment, got %d: %s", resp.StatusCode, body)
	}
}

func TestRegisterCommandErrorMapping(t *testing.T) {
	f := newFixture(t)
	cookie, _ := f.openPage(t)

	cases := []struct {
		name   string
		body   string
		cookie *http.Cookie
		status int
	}{
		{name: "malformed body", body: `{`, cookie: cookie, status: http.StatusBadRequest},
		{name: "missing session", body: `{"turma":""}`, status: http.StatusBadRequest},
		{name: "unknown session", body: `{"session_id":"nope","turma":""}`, status: http.StatusNotFound},
		{name: "unknown chip", body: `{"turma":"9/1999"}`, cookie: cookie, status: http.StatusBadRequest},
		{name: "upstream status", body: `{"turma":"3/2024"}`, cookie: cookie, status: http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPost, "/visao-geral/chips", tc.body, tc.cookie)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.StatusCode, body)
			}
		})
	}

	state := f.state(t, cookie)
	if state.Count != "2 registro(s)" {
		t.Fatalf("failed load must leave the page untouched, got %+v", state)
	}
}

func TestRegisterWebSocketFiltersBySession(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = f.app.Listener(ln) }()
	t.Cleanup(func() { _ = f.app.Shutdown() })

	url := "ws://" + ln.Addr().String() + "/visao-geral/ws?session=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, func() bool { return f.hub.Subscribers() == 1 })

	_ = f.hub.PageUpdated(context.Background(), overview.RefreshEvent{SessionID: "s2", Sequence: 1})
	_ = f.hub.PageUpdated(context.Background(), overview.RefreshEvent{SessionID: "s1", Sequence: 2})

	var event overview.RefreshEvent
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.SessionID != "s1" || event.Sequence != 2 {
		t.Fatalf("expected only s1 events, got %+v", event)
	}

	conn.Close()
	waitFor(t, func() bool { return f.hub.Subscribers() == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
