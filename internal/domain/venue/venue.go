// Package venue contains the candidate model passed between layers.
//
// A Venue is built by enrichment collaborators from raw provider payloads,
// scored once before persistence, and re-scored when enrichment fields
// change. Every field except the name is optional: absence contributes
// nothing anywhere, it is never an error.
package venue

import (
	"time"

	"github.com/okian/nitecap/internal/domain/geo"
)

// Venue represents one point-of-interest candidate.
type Venue struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`

	// Location is nil when the provider supplied no usable coordinates.
	// Such venues are excluded from distance-based discovery.
	Location *geo.Point `json:"location,omitempty"`

	// Independent provider identifiers.
	GooglePlaceID string `json:"google_place_id,omitempty"`
	FoursquareID  string `json:"foursquare_id,omitempty"`

	// Types are provider-supplied machine tags (e.g. "bar", "night_club");
	// Categories are human-readable names (e.g. "Cocktail Bar").
	Types      []string `json:"types,omitempty"`
	Categories []string `json:"categories,omitempty"`

	Rating     float64 `json:"rating,omitempty"`
	PriceLevel int     `json:"price_level,omitempty"`
	Popularity float64 `json:"popularity,omitempty"`

	// Social engagement passthrough; not used by scoring.
	FollowerCount int      `json:"follower_count,omitempty"`
	Tips          []string `json:"tips,omitempty"`

	Website   string `json:"website,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Summary   string `json:"summary,omitempty"`

	Hours Hours `json:"hours,omitempty"`

	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`

	// IsNightlife is set by an enrichment provider whose taxonomy marks the
	// place as nightlife.
	IsNightlife bool `json:"is_nightlife,omitempty"`

	EnrichedAt time.Time `json:"enriched_at,omitempty"`
}

// HasCoordinates reports whether the venue carries a usable coordinate pair.
func (v Venue) HasCoordinates() bool {
	return v.Location != nil
}
