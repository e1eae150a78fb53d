package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth: invalid credentials or expired session.
	ErrAuth = errors.New("invalid email or password")
	// ErrNotFound: the report does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrTransient: the backend could not be reached.
	ErrTransient = errors.New("backend unavailable")
)

// PartialWriteError reports a multi-step write that failed after an earlier
// step already took effect. Nothing is rolled back.
type PartialWriteError struct {
	Stage    string // step that failed
	PhotoURL string // uploaded photo left behind, if any
	ReportID string // inserted report left behind, if any
	Err      error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %s failed (photo=%q report=%q): %v", e.Stage, e.PhotoURL, e.ReportID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// NotFound wraps ErrNotFound with the kind and id that were looked up.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s %w", kind, id, ErrNotFound)
}
