package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	catalogSvc "filehub/internal/domain/services/catalog"
	"filehub/internal/httputil"
)

// multipartMemory is how much of an upload is buffered before spilling to disk
const multipartMemory = 8 << 20

// FileHandler handles file HTTP requests
type FileHandler struct {
	catalogService catalogSvc.CatalogService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(catalogService catalogSvc.CatalogService, maxUploadBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		catalogService: catalogService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// updateFileRequest is a PATCH body. folder_id null moves to root level.
type updateFileRequest struct {
	Name     httputil.Optional[string] `json:"name"`
	FolderID httputil.Optional[int64]  `json:"folder_id"`
}

// UploadFile stores an uploaded file
// POST /api/files (multipart: file, name?, folder_id?)
// Returns 201 if created, 409 with the existing file if the name is taken
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			handleError(w, h.logger, err)
			return
		}
		handleError(w, h.logger, fmt.Errorf("%w: invalid multipart form: %v", domain.ErrValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	content, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, h.logger, fmt.Errorf("%w: missing file part", domain.ErrValidation))
		return
	}
	defer content.Close()

	folderID, err := httputil.OptionalInt64("folder_id", r.FormValue("folder_id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	file, err := h.catalogService.UploadFile(r.Context(), &catalogSvc.UploadFileRequest{
		OwnerID:  userID,
		Name:     name,
		FolderID: folderID,
		Content:  content,
	})
	if err != nil {
		HandleCreateConflict(w, h.logger, err, func(id int64) (*catalog.File, error) {
			return h.catalogService.GetFile(r.Context(), userID, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile retrieves file metadata
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	file, err := h.catalogService.GetFile(r.Context(), userID, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DownloadFile streams file content
// GET /api/files/{id}/content
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	file, content, err := h.catalogService.OpenFile(r.Context(), userID, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		// Headers are gone; all that is left is to record it.
		h.logger.Warn("file download interrupted", "id", file.ID, "error", err)
	}
}

// UpdateFile renames and/or moves a file
// PATCH /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req updateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if !req.Name.Present && !req.FolderID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update: provide name and/or folder_id")
		return
	}

	var file *catalog.File
	if req.Name.Present {
		if req.Name.Value == nil {
			httputil.RespondError(w, http.StatusBadRequest, "name cannot be null")
			return
		}
		file, err = h.catalogService.RenameFile(r.Context(), userID, id, *req.Name.Value)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	if req.FolderID.Present {
		file, err = h.catalogService.MoveFile(r.Context(), userID, id, req.FolderID.Value)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes a file and its content
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.catalogService.DeleteFile(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
