package gorouter

import (
	"testing"
	"time"

	overview "github.com/goliatone/go-overview/components/overview"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router missing")
	}
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{State: "/_state"})
	if routes.State != "/_state" {
		t.Fatalf("expected custom state route to be kept, got %s", routes.State)
	}
	if routes.HTML != "/" || routes.Chips != "/chips" || routes.Export != "/export.xlsx" || routes.WebSocket != "/ws" {
		t.Fatalf("unexpected defaults: %#v", routes)
	}
}

func TestSessionFromCookies(t *testing.T) {
	store := overview.NewSessionStore(func(id string) *overview.Controller {
		return overview.NewController(overview.Options{SessionID: id})
	}, time.Minute)
	ctrl, _ := store.Get("")

	header := "theme=dark; " + overview.SessionCookie + "=" + ctrl.SessionID()
	if got := sessionFromCookies(header); got != ctrl.SessionID() {
		t.Fatalf("expected session %s, got %s", ctrl.SessionID(), got)
	}
	if got := sessionFromCookies(""); got != "" {
		t.Fatalf("expected empty session, got %s", got)
	}
	if got := sessionFromCookies("theme=dark"); got != "" {
		t.Fatalf("expected empty session, got %s", got)
	}
}
