package overview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-overview/components/overview/commands"
	"github.com/goliatone/go-overview/components/overview/queries"
	"github.com/goliatone/go-overview/pkg/aggregate"
)

func TestNewAppSharesSessionsAndHub(t *testing.T) {
	app := NewApp(AppOptions{
		Page:       Options{Client: aggregate.NewMockClient(aggregate.DemoRows())},
		SessionTTL: time.Minute,
	})

	ctrl, created := app.Sessions.Get("")
	require.True(t, created)
	events, cancel := app.Hub.Subscribe(ctrl.SessionID())
	defer cancel()

	ctrl.Init(context.Background())
	select {
	case event := <-events:
		assert.Equal(t, ctrl.SessionID(), event.SessionID)
		assert.Equal(t, len(aggregate.DemoRows()), event.Count)
	default:
		t.Fatalf("expected refresh event")
	}

	err := app.Commands.SelectChip.Execute(context.Background(), commands.SelectChipInput{
		SessionID: ctrl.SessionID(),
		Turma:     "1/2025",
	})
	require.NoError(t, err)
	assert.Equal(t, "1/2025", ctrl.State().ActiveTurma)
}

func TestAppHandlersServeState(t *testing.T) {
	app := NewApp(AppOptions{Page: Options{Client: aggregate.NewMockClient(aggregate.DemoRows())}})
	mux := http.NewServeMux()
	app.Handlers().Mount(mux, "/visao-geral")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/visao-geral/state", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "5 registro(s)")
}

func TestAppQueriesReadSessionState(t *testing.T) {
	app := NewApp(AppOptions{Page: Options{Client: aggregate.NewMockClient(aggregate.DemoRows())}})
	ctrl, _ := app.Sessions.Get("")
	ctrl.Init(context.Background())

	chips, err := app.Queries.Chips.Query(context.Background(), queries.StateInput{SessionID: ctrl.SessionID()})
	require.NoError(t, err)
	require.NotEmpty(t, chips)
	assert.Equal(t, "Todas", chips[0].Label)

	_, err = app.Queries.State.Query(context.Background(), queries.StateInput{SessionID: "unknown"})
	assert.ErrorIs(t, err, commands.ErrSessionNotFound)
}
