package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	"filehub/internal/httputil"
)

// handleError converts domain errors to problem responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		conflictErr *domain.ConflictError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		problem := httputil.NewProblem(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
		httputil.RespondProblem(w, problem.With("limit", maxBytesErr.Limit))
	case errors.Is(err, domain.ErrSelfShare):
		httputil.RespondProblem(w, httputil.NewProblem(http.StatusBadRequest, err.Error()).Named("self-share"))
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondProblem(w, httputil.NewProblem(http.StatusBadRequest, err.Error()).Named("validation"))
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondProblem(w, httputil.NewProblem(http.StatusConflict, conflictErr.Error()).
			Named("duplicate-name").
			With("resource_type", conflictErr.ResourceType).
			With("resource_id", conflictErr.ResourceID))
	case errors.Is(err, domain.ErrCycleDetected):
		httputil.RespondProblem(w, httputil.NewProblem(http.StatusConflict, err.Error()).Named("cycle"))
	case errors.Is(err, domain.ErrStorageUnavailable):
		logger.Error("storage unavailable", "error", err)
		httputil.RespondProblem(w, httputil.NewProblem(http.StatusServiceUnavailable,
			"storage temporarily unavailable").Named("storage-unavailable"))
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HandleCreateConflict handles conflicts during creation by returning the existing resource with 409.
// If the error is a ConflictError naming the clashing row, fetchFn loads it.
func HandleCreateConflict[T any](w http.ResponseWriter, logger *slog.Logger, err error, fetchFn func(id int64) (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) && conflictErr.ResourceID != 0 {
		existing, fetchErr := fetchFn(conflictErr.ResourceID)
		if fetchErr != nil {
			handleError(w, logger, fetchErr)
			return
		}

		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	handleError(w, logger, err)
}

// requireUserID returns the authenticated user or writes a 401
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "missing user identity")
		return "", false
	}
	return userID, true
}

// pathItemRef reads {type} and {id} path values
func pathItemRef(r *http.Request) (catalog.ItemRef, error) {
	itemType, err := catalog.ParseItemType(r.PathValue("type"))
	if err != nil {
		return catalog.ItemRef{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	id, err := httputil.PathInt64(r, "id")
	if err != nil {
		return catalog.ItemRef{}, err
	}
	return catalog.ItemRef{Type: itemType, ID: id}, nil
}
