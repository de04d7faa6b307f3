package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrNoIdentity indicates no current user could be resolved. The caller is
// expected to redirect to the authentication entry point; it is never fatal.
type ErrNoIdentity struct{}

func (e *ErrNoIdentity) Error() string {
	return "Usuário não identificado. Faça login novamente."
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a field-level validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or token. Login failures use
// a single generic message so unknown-email and wrong-password are
// indistinguishable.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates a resource already exists (e.g. duplicate email).
type ErrConflict struct {
	Field   string
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrStorage indicates a persistence failure in the key-value substrate.
type ErrStorage struct {
	Op  string
	Key string
	Err error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("storage %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *ErrStorage) Unwrap() error {
	return e.Err
}

// ErrFlowState indicates an onboarding operation was attempted from the wrong
// step (e.g. submit while still on step 1).
type ErrFlowState struct {
	Step    int
	Message string
}

func (e *ErrFlowState) Error() string {
	return e.Message
}
