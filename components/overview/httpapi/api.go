package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	gocommand "github.com/goliatone/go-command"

	overview "github.com/goliatone/go-overview/components/overview"
	"github.com/goliatone/go-overview/components/overview/commands"
	"github.com/goliatone/go-overview/components/overview/queries"
)

// Handlers exposes net/http endpoints backed by shared commands.
type Handlers struct {
	Sessions   *overview.SessionStore
	Hub        *overview.Hub
	SelectChip gocommand.Commander[commands.SelectChipInput]
	Reload     gocommand.Commander[commands.ReloadInput]
	Resize     gocommand.Commander[commands.ResizeInput]
	Browse     gocommand.Commander[commands.BrowseInput]
	State      gocommand.Querier[queries.StateInput, overview.ViewState]
	Chips      gocommand.Querier[queries.StateInput, []overview.Chip]
}

// validate is shared by all requests; validator.Validate is safe for concurrent use.
var validate = validator.New()

// Mount registers the overview routes on mux under base (e.g. "/visao-geral").
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	mux.HandleFunc("GET "+base, h.HandlePage)
	mux.HandleFunc("GET "+base+"/state", h.HandleState)
	mux.HandleFunc("GET "+base+"/table", h.HandleTable)
	mux.HandleFunc("GET "+base+"/export.xlsx", h.HandleExport)
	mux.HandleFunc("GET "+base+"/chips", h.HandleChips)
	mux.HandleFunc("POST "+base+"/chips", h.HandleSelectChip)
	mux.HandleFunc("POST "+base+"/reload", h.HandleReload)
	mux.HandleFunc("POST "+base+"/resize", h.HandleResize)
	mux.HandleFunc("POST "+base+"/browse", h.HandleBrowse)
	if h.Hub != nil {
		mux.HandleFunc("GET "+base+"/ws", h.Hub.ServeWebSocket)
		mux.HandleFunc("GET "+base+"/events", h.Hub.ServeSSE)
	}
}

// HandlePage renders the page, starting a session when the request has none.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctrl := h.session(w, r)
	if ctrl == nil {
		http.Error(w, "session store not configured", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ctrl.RenderPage(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleState returns the JSON snapshot of the caller's page.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	ctrl := h.session(w, r)
	if ctrl == nil {
		http.Error(w, "session store not configured", http.StatusInternalServerError)
		return
	}
	if h.State == nil {
		writeJSON(w, http.StatusOK, ctrl.State())
		return
	}
	state, err := h.State.Query(r.Context(), queries.StateInput{SessionID: ctrl.SessionID()})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleChips lists the turma chips of the caller's page.
func (h *Handlers) HandleChips(w http.ResponseWriter, r *http.Request) {
	ctrl := h.session(w, r)
	if ctrl == nil || h.Chips == nil {
		http.Error(w, "chips query not configured", http.StatusInternalServerError)
		return
	}
	chips, err := h.Chips.Query(r.Context(), queries.StateInput{SessionID: ctrl.SessionID()})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, chips)
}

// HandleTable renders the results table fragment.
func (h *Handlers) HandleTable(w http.ResponseWriter, r *http.Request) {
	ctrl := h.session(w, r)
	if ctrl == nil {
		http.Error(w, "session store not configured", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ctrl.RenderTable(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleExport streams the current rows as an XLSX workbook.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctrl := h.session(w, r)
	if ctrl == nil {
		http.Error(w, "session store not configured", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="visao-geral.xlsx"`)
	if err := ctrl.Export(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) HandleSelectChip(w http.ResponseWriter, r *http.Request) {
	var payload commands.SelectChipInput
	if !h.decode(w, r, &payload) {
		return
	}
	h.respond(w, h.SelectChip.Execute(r.Context(), payload))
}

func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReloadInput
	if !h.decode(w, r, &payload) {
		return
	}
	h.respond(w, h.Reload.Execute(r.Context(), payload))
}

func (h *Handlers) HandleResize(w http.ResponseWriter, r *http.Request) {
	var payload commands.ResizeInput
	if !h.decode(w, r, &payload) {
		return
	}
	h.respond(w, h.Resize.Execute(r.Context(), payload))
}

func (h *Handlers) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	var payload commands.BrowseInput
	if !h.decode(w, r, &payload) {
		return
	}
	h.respond(w, h.Browse.Execute(r.Context(), payload))
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *overview.Controller {
	if h.Sessions == nil {
		return nil
	}
	id := r.URL.Query().Get("session")
	if cookie, err := r.Cookie(overview.SessionCookie); err == nil && id == "" {
		id = cookie.Value
	}
	ctrl, created := h.Sessions.Get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     overview.SessionCookie,
			Value:    ctrl.SessionID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		ctrl.Init(r.Context())
	}
	return ctrl
}

// decode reads a JSON body, fills SessionID from the cookie when missing and
// validates the payload.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, payload commands.SessionTarget) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if payload.Session() == "" {
		if cookie, err := r.Cookie(overview.SessionCookie); err == nil {
			payload.SetSession(cookie.Value)
		}
	}
	if err := validate.Struct(payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handlers) respond(w http.ResponseWriter, err error) {
	if err != nil {
		code := StatusFor(err)
		if code == http.StatusConflict {
			w.WriteHeader(code)
			return
		}
		http.Error(w, err.Error(), code)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusFor maps command errors to HTTP status codes.
func StatusFor(err error) int {
	var status *overview.StatusError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, commands.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, overview.ErrUnknownChip):
		return http.StatusBadRequest
	case errors.Is(err, overview.ErrStaleResponse):
		return http.StatusConflict
	case errors.As(err, &status):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
