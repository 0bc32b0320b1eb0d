package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	sharingSvc "filehub/internal/domain/services/sharing"
	"filehub/internal/httputil"
)

// ShareHandler handles grant HTTP requests
type ShareHandler struct {
	ledger sharingSvc.Ledger
	logger *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(ledger sharingSvc.Ledger, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		ledger: ledger,
		logger: logger,
	}
}

type shareRequest struct {
	ItemType   string `json:"item_type"`
	ItemID     int64  `json:"item_id"`
	SharedWith string `json:"shared_with"`
}

// Share grants another user access to an item the caller owns
// POST /api/shares
// Sharing again refreshes the existing grant and still returns 201.
func (h *ShareHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req shareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	itemType, err := catalog.ParseItemType(req.ItemType)
	if err != nil {
		handleError(w, h.logger, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	grant, err := h.ledger.Share(r.Context(), userID, catalog.ItemRef{Type: itemType, ID: req.ItemID}, req.SharedWith)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, grant)
}

// Revoke removes a grant
// DELETE /api/shares/{type}/{id}/{user}
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ref, err := pathItemRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.ledger.Revoke(r.Context(), userID, ref, r.PathValue("user")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListGrants lists who an owned item is shared with
// GET /api/shares/{type}/{id}
func (h *ShareHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ref, err := pathItemRef(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	grants, err := h.ledger.ListGrants(r.Context(), userID, ref)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, nonNil(grants))
}

// ListReceived lists grants held by the caller
// GET /api/shares/received
func (h *ShareHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	grants, err := h.ledger.ListReceived(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, nonNil(grants))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
