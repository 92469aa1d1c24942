// Package storage defines the contract both persistence backends implement:
// the whole collection is loaded and saved as a unit, and every save reports
// the fidelity it achieved so lossy degradation is never silent.
package storage

import (
	"context"
	"errors"

	"github.com/Foetwenny/Penny-collection/internal/domain"
)

var (
	// ErrUnavailable means the backend could not be opened at all.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrQuotaExceeded means the full degradation chain was exhausted and
	// the collection could not be persisted. The caller's in-memory
	// collection is left unchanged.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrMalformed means persisted or externally supplied data failed
	// structural validation.
	ErrMalformed = errors.New("malformed collection data")
)

// Fidelity describes how much of the collection a successful save preserved.
type Fidelity int

const (
	// FidelityFull: everything persisted as given.
	FidelityFull Fidelity = iota
	// FidelityRecompressed: penny images were re-encoded at reduced
	// dimensions and quality to fit the quota.
	FidelityRecompressed
	// FidelityStripped: penny images were dropped entirely; all textual
	// fields were preserved.
	FidelityStripped
)

func (f Fidelity) String() string {
	switch f {
	case FidelityRecompressed:
		return "recompressed"
	case FidelityStripped:
		return "stripped"
	default:
		return "full"
	}
}

// Degraded reports whether the save lost image data.
func (f Fidelity) Degraded() bool {
	return f != FidelityFull
}

// Backend persists and retrieves the entire collection as a unit.
//
// SaveAll replaces the persisted collection atomically from the caller's
// point of view: a subsequent LoadAll never observes a partial album set.
// SaveAll must not mutate the collection it is given, even when it degrades
// the persisted copy to fit a quota.
type Backend interface {
	LoadAll(ctx context.Context) (*domain.Collection, error)
	SaveAll(ctx context.Context, c *domain.Collection) (Fidelity, error)
}
