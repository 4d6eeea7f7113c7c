// package apperrors defines the error taxonomy shared by the engine and the
// transport layer. Sentinel errors are matched with errors.Is; typed errors
// carry context and are matched with errors.As.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("operation conflicts with current state")

	ErrInvalidRequest = errors.New("invalid request body")

	ErrInsufficientCandidates = errors.New("not enough qualified experts")
)

// Conflict-family errors wrap ErrConflict so the transport layer can match
// the whole family with a single errors.Is check.
var (
	ErrDrawCancelled     = fmt.Errorf("%w: draw is cancelled", ErrConflict)
	ErrConfirmBackup     = fmt.Errorf("%w: cannot confirm a backup result", ErrConflict)
	ErrReplaceBackup     = fmt.Errorf("%w: cannot replace a backup result", ErrConflict)
	ErrNoBackupAvailable = fmt.Errorf("%w: no backup experts available", ErrConflict)
)

// InvalidTokenError reports an avoidance or requirement token that is not
// valid in any of its recognized forms.
type InvalidTokenError struct{ Token string }

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid term token '%s'", e.Token)
}
func (e *InvalidTokenError) Is(target error) bool { return target == ErrValidation }

// UnsupportedDrawMethodError reports a draw method outside the supported set.
type UnsupportedDrawMethodError struct{ Method string }

func (e *UnsupportedDrawMethodError) Error() string {
	return fmt.Sprintf("unsupported draw method '%s'", e.Method)
}
func (e *UnsupportedDrawMethodError) Is(target error) bool { return target == ErrValidation }

// InsufficientCandidatesError reports a candidate pool smaller than the
// requested primary plus backup quota.
type InsufficientCandidatesError struct {
	Needed    int
	Available int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("not enough qualified experts: need %d, have %d", e.Needed, e.Available)
}
func (e *InsufficientCandidatesError) Is(target error) bool {
	return target == ErrInsufficientCandidates
}
