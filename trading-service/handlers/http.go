package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/application"
	"github.com/go-chi/chi/v5"
)

// UserIDHeader carries the authenticated user id, set by the gateway
const UserIDHeader = "X-User-ID"

// TradingHandlers contains trading HTTP handlers
type TradingHandlers struct {
	submitPurchase   *application.SubmitPurchase
	getPurchaseState *application.GetPurchaseState
	getStore         *application.GetStore
}

// NewTradingHandlers creates new trading handlers
func NewTradingHandlers(
	submitPurchase *application.SubmitPurchase,
	getPurchaseState *application.GetPurchaseState,
	getStore *application.GetStore,
) *TradingHandlers {
	return &TradingHandlers{
		submitPurchase:   submitPurchase,
		getPurchaseState: getPurchaseState,
		getStore:         getStore,
	}
}

// RegisterRoutes registers trading routes
func (h *TradingHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/purchase", h.SubmitPurchase)
		r.Get("/purchase/status/{idempotencyId}", h.GetPurchaseStatus)
		r.Get("/store", h.GetStore)
	})
}

// SubmitPurchase handles purchase requests. Processing is asynchronous: the response points at
// the status endpoint.
func (h *TradingHandlers) SubmitPurchase(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserIDHeader)
	if userID == "" {
		http.Error(w, "User ID is required", http.StatusUnauthorized)
		return
	}

	var cmd application.SubmitPurchaseCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.UserID = userID

	response, err := h.submitPurchase.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Is(err, application.ErrInvalidPurchase) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/v1/purchase/status/"+response.IdempotencyID)
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(response)
}

// GetPurchaseStatus handles purchase status requests
func (h *TradingHandlers) GetPurchaseStatus(w http.ResponseWriter, r *http.Request) {
	idempotencyID := chi.URLParam(r, "idempotencyId")
	if _, err := models.NewID(idempotencyID); err != nil {
		http.Error(w, "Invalid idempotency ID", http.StatusBadRequest)
		return
	}

	snapshot, err := h.getPurchaseState.Execute(r.Context(), idempotencyID)
	if err != nil {
		if errors.Is(err, application.ErrPurchaseNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// GetStore handles store browse requests
func (h *TradingHandlers) GetStore(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserIDHeader)
	if userID == "" {
		http.Error(w, "User ID is required", http.StatusUnauthorized)
		return
	}

	response, err := h.getStore.Execute(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
