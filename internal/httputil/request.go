package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"filehub/internal/domain"
)

// maxJSONBody caps JSON request bodies. Uploads have their own limit.
const maxJSONBody = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %v: %w", err, domain.ErrValidation)
	}

	return nil
}

// PathInt64 parses a numeric path parameter such as {id}.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, domain.ErrValidation)
	}
	return id, nil
}

// OptionalInt64 parses an optional numeric form or query value.
// An empty value means "not given" and yields nil.
func OptionalInt64(name, raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid %s %q: %w", name, raw, domain.ErrValidation)
	}
	return &id, nil
}
