package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/domain"
)

// APIHandler exposes read-only JSON views of an address's progress.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

// Register mounts the endpoints on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats", h.stats)
	mux.HandleFunc("/api/history", h.history)
	mux.HandleFunc("/api/submissions", h.submissions)
	mux.HandleFunc("/api/languages", h.languages)
	mux.HandleFunc("/api/active", h.active)
}

type activePayload struct {
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

func (h *APIHandler) active(w http.ResponseWriter, r *http.Request) {
	address, ok := addressParam(w, r)
	if !ok {
		return
	}
	active, err := h.service.IsActive(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activePayload{Address: address, Active: active})
}

func (h *APIHandler) stats(w http.ResponseWriter, r *http.Request) {
	address, ok := addressParam(w, r)
	if !ok {
		return
	}
	defer h.service.Leave(r.Context(), address)
	snap, err := h.service.Snapshot(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *APIHandler) history(w http.ResponseWriter, r *http.Request) {
	address, ok := addressParam(w, r)
	if !ok {
		return
	}
	history, err := h.service.History(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *APIHandler) submissions(w http.ResponseWriter, r *http.Request) {
	address, ok := addressParam(w, r)
	if !ok {
		return
	}
	subs, err := h.service.LedgerHistory(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *APIHandler) languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.LanguagePairs)
}

func addressParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	raw := r.URL.Query().Get("address")
	if !common.IsHexAddress(raw) {
		http.Error(w, "missing or invalid address", http.StatusBadRequest)
		return "", false
	}
	return common.HexToAddress(raw).Hex(), true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrLedgerUnavailable) {
		status = http.StatusServiceUnavailable
	}
	log.Printf("api error: %v", err)
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
