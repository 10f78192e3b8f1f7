package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/calvinwijaya/blackjack/internal/table"
)

// Handlers contains all the API handlers
type Handlers struct {
	tables *table.Service
	hub    *Hub
	logger *log.Logger
}

// NewHandlers creates a new instance of Handlers. hub may be nil.
func NewHandlers(tables *table.Service, hub *Hub, logger *log.Logger) *Handlers {
	return &Handlers{
		tables: tables,
		hub:    hub,
		logger: logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/tables", h.CreateTable).Methods("POST")
	r.HandleFunc("/api/tables", h.ListTables).Methods("GET")
	r.HandleFunc("/api/tables/{id}", h.GetTable).Methods("GET")
	r.HandleFunc("/api/tables/{id}", h.DeleteTable).Methods("DELETE")

	// Game actions
	r.HandleFunc("/api/tables/{id}/bet", h.PlaceBet).Methods("POST")
	r.HandleFunc("/api/tables/{id}/deal", h.action(table.Deal)).Methods("POST")
	r.HandleFunc("/api/tables/{id}/hit", h.action(table.Hit)).Methods("POST")
	r.HandleFunc("/api/tables/{id}/stand", h.action(table.Stand)).Methods("POST")
	r.HandleFunc("/api/tables/{id}/new-game", h.action(table.NewGame)).Methods("POST")

	// WebSocket endpoint
	if h.hub != nil {
		r.HandleFunc("/ws", h.ServeWS)
	}
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

func (h *Handlers) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, table.ErrNotFound):
		errorResponse(w, http.StatusNotFound, "Table not found")
	case errors.Is(err, table.ErrUnknownAction):
		errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Request failed", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// CreateTable opens a new table
func (h *Handlers) CreateTable(w http.ResponseWriter, r *http.Request) {
	snap, err := h.tables.Create(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	response(w, http.StatusCreated, snap)
}

// ListTables returns every table
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.tables.List(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	response(w, http.StatusOK, snaps)
}

// GetTable returns the current state of a table
func (h *Handlers) GetTable(w http.ResponseWriter, r *http.Request) {
	snap, err := h.tables.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.serviceError(w, err)
		return
	}
	response(w, http.StatusOK, snap)
}

// DeleteTable closes a table
func (h *Handlers) DeleteTable(w http.ResponseWriter, r *http.Request) {
	if err := h.tables.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlaceBet sets the pending bet of a table
func (h *Handlers) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount *int `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.apply(w, r, table.Bet, *req.Amount)
}

// action returns a handler for an operation that takes no arguments.
func (h *Handlers) action(a table.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Drain any body so keep-alive connections are reusable
		io.Copy(io.Discard, r.Body)
		h.apply(w, r, a, 0)
	}
}

func (h *Handlers) apply(w http.ResponseWriter, r *http.Request, a table.Action, amount int) {
	snap, err := h.tables.Apply(r.Context(), mux.Vars(r)["id"], a, amount)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	// Broadcast the new state to everyone watching the table
	if h.hub != nil {
		h.hub.BroadcastSnapshot(snap)
	}

	response(w, http.StatusOK, snap)
}

// ServeWS upgrades a connection that watches one table
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("tableId")
	if tableID == "" {
		errorResponse(w, http.StatusBadRequest, "tableId is required")
		return
	}

	snap, err := h.tables.Get(r.Context(), tableID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.hub.Serve(w, r, snap)
}
