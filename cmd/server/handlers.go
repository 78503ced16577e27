package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"copytrade-scanner-go/internal/models"
	"copytrade-scanner-go/internal/syncer"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log    *zap.Logger
	db     *gorm.DB
	syncer *syncer.Syncer
	secret string
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, db *gorm.DB, s *syncer.Syncer, secret string) *APIHandler {
	return &APIHandler{log: log, db: db, syncer: s, secret: secret}
}

// syncResponse is the trigger endpoint's success payload.
type syncResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Traders []string `json:"traders"`
}

// errorResponse is the payload for every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

// SyncHandler is the authenticated trigger that runs a full catalog resync.
// Invoked by the external scheduler (cron) or manually.
func (h *APIHandler) SyncHandler(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		// No JSON envelope on auth failures, just the marker.
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}

	result, err := h.syncer.Sync(r.Context())
	if err != nil {
		h.log.Error("Sync run failed", zap.Error(err))
		switch {
		case errors.Is(err, syncer.ErrSyncInFlight):
			respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		case errors.Is(err, syncer.ErrNoData):
			respondJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		default:
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	respondJSON(w, http.StatusOK, syncResponse{
		Success: true,
		Message: fmt.Sprintf("Updated %d verified traders.", result.Written),
		Traders: result.Nicknames,
	})
}

// traderView is a stored record plus its on-read derived metrics.
type traderView struct {
	models.TraderRecord
	Metrics models.DerivedMetrics `json:"metrics"`
}

// TradersHandler returns the full catalog, best performers first, with
// derived metrics computed on read. An empty catalog is an empty list, not
// an error: "no data yet" is a valid display state.
func (h *APIHandler) TradersHandler(w http.ResponseWriter, r *http.Request) {
	var traders []models.TraderRecord
	if err := h.db.Order("roi_90d desc").Find(&traders).Error; err != nil {
		h.log.Error("Failed to read trader catalog", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read trader catalog"})
		return
	}

	views := make([]traderView, 0, len(traders))
	for _, t := range traders {
		views = append(views, traderView{TraderRecord: t, Metrics: t.Project()})
	}
	respondJSON(w, http.StatusOK, views)
}

// TraderHandler returns a single trader by exchange uid.
func (h *APIHandler) TraderHandler(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")

	var trader models.TraderRecord
	err := h.db.Where("exchange_uid = ?", uid).First(&trader).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "trader not found"})
		return
	}
	if err != nil {
		h.log.Error("Failed to read trader", zap.String("uid", uid), zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read trader"})
		return
	}

	respondJSON(w, http.StatusOK, traderView{TraderRecord: trader, Metrics: trader.Project()})
}

// statusResponse reports catalog size and freshness.
type statusResponse struct {
	Traders     int64      `json:"traders"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// StatusHandler is a lightweight health/ops endpoint.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	var status statusResponse
	if err := h.db.Model(&models.TraderRecord{}).Count(&status.Traders).Error; err != nil {
		h.log.Error("Failed to count traders", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "status unavailable"})
		return
	}

	if status.Traders > 0 {
		var newest models.TraderRecord
		if err := h.db.Order("last_updated desc").First(&newest).Error; err == nil {
			status.LastUpdated = &newest.LastUpdated
		}
	}

	respondJSON(w, http.StatusOK, status)
}

// authorized checks the bearer shared secret in constant time.
func (h *APIHandler) authorized(r *http.Request) bool {
	want := "Bearer " + h.secret
	got := r.Header.Get("Authorization")
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
