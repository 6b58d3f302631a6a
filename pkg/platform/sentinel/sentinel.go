package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and broker adapters return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: request, user, topic or audit entry does not exist
//   - ErrConflict: unique key taken or topic already exists
//   - ErrInvalidState: entity in wrong state for the requested transition
//   - ErrUnavailable: database, broker or directory temporarily unreachable
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
