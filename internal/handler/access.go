package handler

import (
	"log/slog"
	"net/http"

	sharingSvc "filehub/internal/domain/services/sharing"
	"filehub/internal/httputil"
)

// AccessHandler answers visibility queries
type AccessHandler struct {
	accessService sharingSvc.AccessService
	logger        *slog.Logger
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(accessService sharingSvc.AccessService, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
		logger:        logger,
	}
}

// ListAccessible lists everything the caller owns or was shared
// GET /api/accessible
func (h *AccessHandler) ListAccessible(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.accessService.ListAccessible(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, nonNil(items))
}

// CheckAccess reports whether the caller can see one item
// GET /api/access/{type}/{id}
func (h *AccessHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ref, err := pathItemRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	allowed, err := h.accessService.CanAccess(r.Context(), userID, ref)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
