package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrMissingRecurrence indicates a scheduled action reached the persistence
// boundary without a repetition rule. Such an action is meaningless and is
// rejected, never defaulted.
var ErrMissingRecurrence = errors.New("scheduled action has no recurrence")

// ErrUnbalanced indicates a transaction whose splits do not sum to zero.
// This is a data-integrity error and is never silently auto-corrected.
var ErrUnbalanced = errors.New("transaction splits do not balance")

// ErrPlaceholderAccount indicates an attempt to post a split to a
// placeholder account, which may only hold child accounts.
var ErrPlaceholderAccount = errors.New("cannot post to a placeholder account")

// ErrInvalidColorCode indicates a malformed account color value. Callers log
// and ignore it; the account keeps its default color.
var ErrInvalidColorCode = errors.New("invalid color code")
