// Package repository defines the venue store interface and errors.
package repository

import (
	"context"

	"github.com/okian/nitecap/internal/domain/venue"
)

// Store provides read/write access to persisted venues. Venues reach the
// store only after passing the scoring engine; the store itself never
// scores.
type Store interface {
	// Upsert inserts or wholly replaces a venue by ID.
	Upsert(ctx context.Context, v venue.Venue) error

	// Get returns the venue with the given ID.
	// Returns ErrNotFound if the venue is unknown.
	Get(ctx context.Context, id string) (venue.Venue, error)

	// Delete removes a venue. Deleting an unknown ID is a no-op.
	Delete(ctx context.Context, id string) error

	// ListByCity returns all venues whose city partition key matches
	// (lowercased, trimmed comparison).
	ListByCity(ctx context.Context, city string) ([]venue.Venue, error)

	// Count returns the number of venues tracked.
	Count(ctx context.Context) int
}
