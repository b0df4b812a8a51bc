package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/okian/nitecap/internal/domain/geo"
	"github.com/okian/nitecap/internal/domain/venue"
)

// PostgresStore implements Store on a pgx connection pool. The flat venues
// table is keyed by id with a city column for the partition filter; list
// shapes (types, categories, tips, hours) are JSON columns. Creating and
// migrating the table is the operator's job, not this store's.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const venueColumns = `
	id, name, address, lat, lng,
	google_place_id, foursquare_id,
	types, categories, rating, price_level, popularity,
	follower_count, tips, website, instagram, summary,
	hours, city, state, is_nightlife, enriched_at
`

// Upsert implements Store.
func (s *PostgresStore) Upsert(ctx context.Context, v venue.Venue) error {
	query := `
		INSERT INTO venues (` + venueColumns + `)
		VALUES (
			$1, $2, $3, $4, $5,
			$6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22
		)
		ON CONFLICT (id) DO UPDATE SET
			name = $2, address = $3, lat = $4, lng = $5,
			google_place_id = $6, foursquare_id = $7,
			types = $8, categories = $9, rating = $10,
			price_level = $11, popularity = $12,
			follower_count = $13, tips = $14, website = $15,
			instagram = $16, summary = $17,
			hours = $18, city = $19, state = $20,
			is_nightlife = $21, enriched_at = $22
	`

	var lat, lng *float64
	if v.Location != nil {
		lat = &v.Location.Lat
		lng = &v.Location.Lng
	}

	typesJSON, err := json.Marshal(v.Types)
	if err != nil {
		return fmt.Errorf("marshaling types: %w", err)
	}
	categoriesJSON, err := json.Marshal(v.Categories)
	if err != nil {
		return fmt.Errorf("marshaling categories: %w", err)
	}
	tipsJSON, err := json.Marshal(v.Tips)
	if err != nil {
		return fmt.Errorf("marshaling tips: %w", err)
	}
	hoursJSON, err := json.Marshal(v.Hours)
	if err != nil {
		return fmt.Errorf("marshaling hours: %w", err)
	}

	_, err = s.db.Exec(ctx, query,
		v.ID, v.Name, v.Address, lat, lng,
		v.GooglePlaceID, v.FoursquareID,
		typesJSON, categoriesJSON, v.Rating, v.PriceLevel, v.Popularity,
		v.FollowerCount, tipsJSON, v.Website, v.Instagram, v.Summary,
		hoursJSON, v.City, v.State, v.IsNightlife, v.EnrichedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting venue: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id string) (venue.Venue, error) {
	row := s.db.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id)

	v, err := scanVenue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return venue.Venue{}, ErrNotFound
	}
	if err != nil {
		return venue.Venue{}, fmt.Errorf("querying venue: %w", err)
	}
	return v, nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM venues WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting venue: %w", err)
	}
	return nil
}

// ListByCity implements Store.
func (s *PostgresStore) ListByCity(ctx context.Context, city string) ([]venue.Venue, error) {
	want := strings.ToLower(strings.TrimSpace(city))

	rows, err := s.db.Query(ctx, `SELECT `+venueColumns+` FROM venues WHERE lower(city) = $1`, want)
	if err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	defer rows.Close()

	var out []venue.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning venue: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating venues: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context) int {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM venues`).Scan(&count); err != nil {
		return 0
	}
	return count
}

// scanVenue reads one row in venueColumns order.
func scanVenue(row pgx.Row) (venue.Venue, error) {
	var (
		v              venue.Venue
		lat, lng       *float64
		typesJSON      []byte
		categoriesJSON []byte
		tipsJSON       []byte
		hoursJSON      []byte
	)

	err := row.Scan(
		&v.ID, &v.Name, &v.Address, &lat, &lng,
		&v.GooglePlaceID, &v.FoursquareID,
		&typesJSON, &categoriesJSON, &v.Rating, &v.PriceLevel, &v.Popularity,
		&v.FollowerCount, &tipsJSON, &v.Website, &v.Instagram, &v.Summary,
		&hoursJSON, &v.City, &v.State, &v.IsNightlife, &v.EnrichedAt,
	)
	if err != nil {
		return venue.Venue{}, err
	}

	if lat != nil && lng != nil {
		v.Location = &geo.Point{Lat: *lat, Lng: *lng}
	}
	if err := json.Unmarshal(typesJSON, &v.Types); err != nil {
		return venue.Venue{}, fmt.Errorf("unmarshaling types: %w", err)
	}
	if err := json.Unmarshal(categoriesJSON, &v.Categories); err != nil {
		return venue.Venue{}, fmt.Errorf("unmarshaling categories: %w", err)
	}
	if err := json.Unmarshal(tipsJSON, &v.Tips); err != nil {
		return venue.Venue{}, fmt.Errorf("unmarshaling tips: %w", err)
	}
	if err := json.Unmarshal(hoursJSON, &v.Hours); err != nil {
		return venue.Venue{}, fmt.Errorf("unmarshaling hours: %w", err)
	}

	return v, nil
}
