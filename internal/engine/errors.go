package engine

import (
	"errors"
	"fmt"

	"pillarlog/internal/storage"
)

// Sentinel kinds for every failure the engine can produce. All are logical,
// synchronous failures except ErrStorageUnavailable, which signals an
// environmental fault in the persistence adapter.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidAlignment   = errors.New("timestamp off the 30-minute grid")
	ErrSlotConflict       = errors.New("slot conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnknownGoal        = errors.New("unknown goal")
	ErrUnknownTask        = errors.New("unknown task")
	ErrUnknownEntry       = errors.New("unknown entry")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error wraps an engine failure with a stable machine-readable kind.
// ConflictID is set only for slot conflicts and names the earliest-start
// colliding entry.
type Error struct {
	Kind       error
	Detail     string
	ConflictID string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Detail)
}

func (e *Error) Unwrap() error { return e.Kind }

// KindName returns the wire name for the failure kind of err, or "" when err
// is not an engine failure.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrInvalidAlignment):
		return "invalid_alignment"
	case errors.Is(err, ErrSlotConflict):
		return "slot_conflict"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrUnknownGoal):
		return "unknown_goal"
	case errors.Is(err, ErrUnknownTask):
		return "unknown_task"
	case errors.Is(err, ErrUnknownEntry):
		return "unknown_entry"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return ""
	}
}

// ConflictEntryID extracts the colliding entry id from a slot conflict error.
func ConflictEntryID(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.ConflictID
	}
	return ""
}

func failf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func conflictf(entryID, format string, args ...any) error {
	return &Error{Kind: ErrSlotConflict, Detail: fmt.Sprintf(format, args...), ConflictID: entryID}
}

// wrapStorage translates adapter errors into the engine taxonomy: a missing
// id becomes the given unknown-kind, anything else is an environmental
// failure and must not masquerade as domain validation.
func wrapStorage(err error, unknownKind error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return &Error{Kind: unknownKind, Detail: err.Error()}
	}
	return &Error{Kind: ErrStorageUnavailable, Detail: err.Error()}
}
