package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("permission denied")
	ErrCycleDetected      = errors.New("cycle detected")
	ErrSelfShare          = errors.New("cannot share an item with its owner")
	ErrDanglingReference  = errors.New("dangling reference")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ConflictError reports a name clash inside a folder (DuplicateName).
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder or file
	ResourceID   int64  // ID of the existing resource, 0 if unknown
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// CycleError is returned when a move would make a folder its own ancestor.
type CycleError struct {
	FolderID int64
	TargetID int64
}

func (e *CycleError) Error() string {
	if e.FolderID == e.TargetID {
		return fmt.Sprintf("cannot move folder %d into itself", e.FolderID)
	}
	return fmt.Sprintf("cannot move folder %d into its descendant %d", e.FolderID, e.TargetID)
}

func (e *CycleError) StatusCode() int { return http.StatusConflict }

func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// DanglingReferenceError reports a share grant whose target no longer exists.
// Callers outside the ledger see it as a NotFound.
type DanglingReferenceError struct {
	ItemType string
	ItemID   int64
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.ItemType, e.ItemID, ErrDanglingReference)
}

func (e *DanglingReferenceError) StatusCode() int { return http.StatusNotFound }

func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference || target == ErrNotFound
}

// StorageUnavailableError wraps a storage fault that survived the retry.
type StorageUnavailableError struct {
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("%s: %v", ErrStorageUnavailable, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error   { return e.Err }
func (e *StorageUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

func (e *StorageUnavailableError) Is(target error) bool {
	return target == ErrStorageUnavailable
}
