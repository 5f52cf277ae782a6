package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rook-computer/pipanel/internal/buttons"
	"github.com/rook-computer/pipanel/internal/state"
)

// PanelDeps is what the panel API needs from the running panel.
type PanelDeps struct {
	State   func() state.State
	Press   func(b buttons.Button) bool
	Display func() string
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type stateResponse struct {
	Phase       string    `json:"phase"`
	Button      string    `json:"button"`
	Action      string    `json:"action"`
	ActionEpoch uint64    `json:"actionEpoch"`
	Epoch       uint64    `json:"epoch"`
	Presses     uint64    `json:"presses"`
	Since       time.Time `json:"since"`
}

// RegisterAPIV1 registers the panel routes under /api/v1/:
// GET /state, POST /press/{a..e}, GET /display.
func RegisterAPIV1(mux *http.ServeMux, deps PanelDeps) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(deps)))
}

func apiV1Router(deps PanelDeps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) { handleState(w, r, deps) })
	mux.HandleFunc("/press/", func(w http.ResponseWriter, r *http.Request) { handlePress(w, r, deps) })
	mux.HandleFunc("/display", func(w http.ResponseWriter, r *http.Request) { handleDisplay(w, r, deps) })
	return mux
}

func handleState(w http.ResponseWriter, r *http.Request, deps PanelDeps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.State == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "state not configured")
		return
	}
	s := deps.State()
	writeJSON(w, http.StatusOK, stateResponse{
		Phase:       s.Phase.String(),
		Button:      s.Button,
		Action:      s.Action,
		ActionEpoch: s.ActionEpoch,
		Epoch:       s.Epoch,
		Presses:     s.Presses,
		Since:       s.Since,
	})
}

func handlePress(w http.ResponseWriter, r *http.Request, deps PanelDeps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Press == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "press not configured")
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/press/"), "/")
	b, err := buttons.ParseButton(name)
	if err != nil {
		writeAPIError(w, http.StatusNotFound, "unknown_button", err.Error())
		return
	}
	if !deps.Press(b) {
		writeAPIError(w, http.StatusServiceUnavailable, "queue_full", "too many pending presses")
		return
	}
	writeJSON(w, http.StatusAccepted, okResponse{OK: true})
}

func handleDisplay(w http.ResponseWriter, r *http.Request, deps PanelDeps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Display == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "display not configured")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(deps.Display()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}

// WriteJSON writes v as a JSON response. Exported for the simulator's own
// endpoints.
func WriteJSON(w http.ResponseWriter, status int, v any) { writeJSON(w, status, v) }

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, code, message)
}
