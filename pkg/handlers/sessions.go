// Package handlers exposes the analysis pipeline over HTTP. Each handler
// resolves the session, invokes one pipeline step, and maps domain errors
// to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/apperrors"
	"github.com/ekaya-inc/join-advisor/pkg/export"
	"github.com/ekaya-inc/join-advisor/pkg/loader"
	"github.com/ekaya-inc/join-advisor/pkg/models"
	"github.com/ekaya-inc/join-advisor/pkg/session"
)

// SessionHandler drives the analysis pipeline over HTTP.
type SessionHandler struct {
	manager *session.Manager
	loader  *loader.Loader
	logger  *zap.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(manager *session.Manager, ld *loader.Loader, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		loader:  ld,
		logger:  logger.Named("sessions"),
	}
}

// RegisterRoutes registers the session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.Create)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.Delete)
	mux.HandleFunc("POST /api/sessions/{id}/tables/{side}", h.UploadTable)
	mux.HandleFunc("POST /api/sessions/{id}/candidates", h.DetectCandidates)
	mux.HandleFunc("POST /api/sessions/{id}/reports", h.ScoreAll)
	mux.HandleFunc("GET /api/sessions/{id}/reports", h.GetReports)
	mux.HandleFunc("POST /api/sessions/{id}/hints", h.ApplyHints)
	mux.HandleFunc("POST /api/sessions/{id}/selection", h.SelectKey)
	mux.HandleFunc("POST /api/sessions/{id}/join", h.Execute)
	mux.HandleFunc("GET /api/sessions/{id}/export", h.Export)
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Create()
	h.logger.Info("session created", zap.String("session_id", sess.ID.String()))

	if err := WriteJSON(w, http.StatusCreated, map[string]string{
		"session_id": sess.ID.String(),
	}); err != nil {
		h.logger.Error("Failed to encode session response", zap.Error(err))
	}
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.manager.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// UploadTable handles POST /api/sessions/{id}/tables/{side}. The request
// body is raw CSV; side is "left" or "right".
func (h *SessionHandler) UploadTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	side := r.PathValue("side")
	if side != "left" && side != "right" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_side",
			fmt.Sprintf("side must be left or right, got %q", side))
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = side
	}

	table, err := h.loader.Load(r.Body, source)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_csv", err.Error())
		return
	}

	var snap *models.TableSnapshot
	if side == "left" {
		snap, err = sess.LoadLeft(table)
	} else {
		snap, err = sess.LoadRight(table)
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, snap); err != nil {
		h.logger.Error("Failed to encode snapshot response", zap.Error(err))
	}
}

// DetectCandidates handles POST /api/sessions/{id}/candidates. A dataset
// pair with no compatible columns is not an error at this surface: the
// response carries the empty list with a warning.
func (h *SessionHandler) DetectCandidates(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	candidates, err := sess.DetectCandidates()
	if err != nil && !errors.Is(err, apperrors.ErrInsufficientData) {
		h.writeDomainError(w, err)
		return
	}

	resp := map[string]interface{}{
		"candidates": candidates,
	}
	if err != nil {
		resp["candidates"] = []models.CandidateKey{}
		resp["warning"] = err.Error()
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode candidates response", zap.Error(err))
	}
}

// ScoreAll handles POST /api/sessions/{id}/reports.
func (h *SessionHandler) ScoreAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	reports, err := sess.ScoreAll(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"skipped": sess.Skipped(),
	}); err != nil {
		h.logger.Error("Failed to encode reports response", zap.Error(err))
	}
}

// GetReports handles GET /api/sessions/{id}/reports.
func (h *SessionHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": sess.Reports(),
		"skipped": sess.Skipped(),
	}); err != nil {
		h.logger.Error("Failed to encode reports response", zap.Error(err))
	}
}

// ApplyHints handles POST /api/sessions/{id}/hints.
func (h *SessionHandler) ApplyHints(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	reports, err := sess.ApplyHints(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"hints":   sess.Hints(),
	}); err != nil {
		h.logger.Error("Failed to encode hints response", zap.Error(err))
	}
}

// selectRequest is the body of POST /api/sessions/{id}/selection.
type selectRequest struct {
	CandidateID string `json:"candidate_id"`
}

// SelectKey handles POST /api/sessions/{id}/selection.
func (h *SessionHandler) SelectKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	key, err := sess.SelectKey(req.CandidateID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{
		"selected": key,
	}); err != nil {
		h.logger.Error("Failed to encode selection response", zap.Error(err))
	}
}

// joinRequest is the body of POST /api/sessions/{id}/join.
type joinRequest struct {
	JoinType models.JoinType `json:"join_type"`
}

// Execute handles POST /api/sessions/{id}/join.
func (h *SessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	result, err := sess.Execute(req.JoinType)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode join response", zap.Error(err))
	}
}

// Export handles GET /api/sessions/{id}/export, streaming the joined table
// as CSV.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	result := sess.Result()
	if result == nil || result.Table == nil {
		_ = ErrorResponse(w, http.StatusConflict, "no_result", "execute a join before exporting")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", result.Table.Source+".csv"))

	if err := export.WriteCSV(w, result.Table); err != nil {
		h.logger.Error("Failed to stream csv export", zap.Error(err))
	}
}

// resolve parses the session ID from the path and looks the session up,
// writing the error response itself when either step fails.
func (h *SessionHandler) resolve(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		return nil, false
	}

	sess, err := h.manager.Get(id)
	if err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "session_not_found", err.Error())
		return nil, false
	}
	return sess, true
}

// writeDomainError maps pipeline errors to HTTP status codes.
func (h *SessionHandler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrOutOfOrder):
		_ = ErrorResponse(w, http.StatusConflict, "out_of_order", err.Error())
	case errors.Is(err, session.ErrHintsDisabled):
		_ = ErrorResponse(w, http.StatusConflict, "hints_disabled", err.Error())
	case errors.Is(err, apperrors.ErrProfiling):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "profiling_failed", err.Error())
	case errors.Is(err, apperrors.ErrTypeMismatch):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "type_mismatch", err.Error())
	case errors.Is(err, apperrors.ErrInsufficientData):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "insufficient_data", err.Error())
	case errors.Is(err, apperrors.ErrJoinExecution):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "join_failed", err.Error())
	default:
		h.logger.Error("unhandled pipeline error", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
