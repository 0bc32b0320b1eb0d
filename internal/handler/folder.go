package handler

import (
	"context"
	"iter"
	"log/slog"
	"net/http"

	"filehub/internal/domain/models/catalog"
	catalogSvc "filehub/internal/domain/services/catalog"
	"filehub/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	catalogService catalogSvc.CatalogService
	logger         *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(catalogService catalogSvc.CatalogService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// updateFolderRequest is a PATCH body. parent_id null moves to root level.
type updateFolderRequest struct {
	Name     httputil.Optional[string] `json:"name"`
	ParentID httputil.Optional[int64]  `json:"parent_id"`
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 with the existing folder if the name is taken
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req catalogSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.OwnerID = userID

	folder, err := h.catalogService.CreateFolder(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, h.logger, err, func(id int64) (*catalog.Folder, error) {
			return h.catalogService.GetFolder(r.Context(), userID, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder the user owns or was given access to
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	folder, err := h.catalogService.GetFolder(r.Context(), userID, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// UpdateFolder renames and/or moves a folder
// PATCH /api/folders/{id}
// The rename is applied before the move; each step commits on its own.
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req updateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if !req.Name.Present && !req.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update: provide name and/or parent_id")
		return
	}

	var folder *catalog.Folder
	if req.Name.Present {
		if req.Name.Value == nil {
			httputil.RespondError(w, http.StatusBadRequest, "name cannot be null")
			return
		}
		folder, err = h.catalogService.RenameFolder(r.Context(), userID, id, *req.Name.Value)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	if req.ParentID.Present {
		folder, err = h.catalogService.MoveFolder(r.Context(), userID, id, req.ParentID.Value)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with everything below it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.catalogService.DeleteFolder(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListChildren lists the direct children of a folder
// GET /api/folders/{id}/children
func (h *FolderHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.respondChildren(w, r.Context(), userID, &id)
}

// ListRootChildren lists the user's root level
// GET /api/root/children
func (h *FolderHandler) ListRootChildren(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	h.respondChildren(w, r.Context(), userID, nil)
}

func (h *FolderHandler) respondChildren(w http.ResponseWriter, ctx context.Context, userID string, folderID *int64) {
	seq, err := h.catalogService.ListChildren(ctx, userID, folderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	entries, err := collectEntries(seq)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entries)
}

// collectEntries drains a listing. The result is never nil so it encodes as [].
func collectEntries(seq iter.Seq2[catalog.Entry, error]) ([]catalog.Entry, error) {
	entries := []catalog.Entry{}
	for entry, err := range seq {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
