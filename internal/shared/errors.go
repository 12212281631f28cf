package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a natural-key conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInactive indicates the resource exists but is deactivated.
	ErrInactive = errors.New("resource inactive")
	// ErrNoCompanyContext occurs when a request carries no company scope.
	ErrNoCompanyContext = errors.New("company context missing")
)
