// Package discovery implements the geospatial discovery query: filter
// candidates, rank by great-circle distance, paginate, and widen the search
// when a page comes up short.
package discovery

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/okian/nitecap/internal/domain/geo"
	"github.com/okian/nitecap/internal/domain/venue"
	"github.com/okian/nitecap/pkg/logger"
	"github.com/okian/nitecap/pkg/metrics"
)

// Defaults for pagination and fallback widening. Widening is an explicit
// bounded loop: a fixed step, a fixed number of attempts, then at most one
// retry with the category filter dropped.
const (
	defaultLimit        = 20
	defaultMaxLimit     = 100
	defaultRadiusStep   = 1000 // meters
	defaultMaxWidenings = 3
	defaultTTLHours     = 6

	cacheNamespace = "venues"
)

// Query describes one discovery request.
type Query struct {
	// City is the partition key candidates are fetched under.
	City string

	// Origin is the point distances are computed from.
	Origin geo.Point

	// Category keeps only venues whose joined category text contains it
	// (case-insensitive substring). Empty means no category filter.
	Category string

	// RadiusMeters drops venues farther than this from Origin. Zero means
	// no ceiling, and no fallback widening either.
	RadiusMeters int

	// Skip/Limit select the page by offset slicing.
	Skip  int
	Limit int

	// After is the opaque cursor alternative to Skip: the ID of the last
	// venue already seen. When set it overrides Skip.
	After string
}

// Result is one discovered venue augmented with its computed distance.
type Result struct {
	venue.Venue
	DistanceMeters float64 `json:"distance"`
}

// Lister fetches the full candidate set for a city partition.
type Lister func(ctx context.Context, city string) ([]venue.Venue, error)

// Memoizer is the cache-aside capability the engine memoizes ranked lists
// with. Implemented by the cache adapter.
type Memoizer interface {
	GetOrCompute(ctx context.Context, namespace string, params map[string]any, ttlHours int, loader func(context.Context) ([]byte, error)) ([]byte, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMemoizer caches each attempt's full ranked list under its parameter
// fingerprint. Without it every query recomputes from the lister.
func WithMemoizer(m Memoizer) Option {
	return func(e *Engine) {
		e.memo = m
	}
}

// WithTTLHours sets the ranked-list cache TTL.
func WithTTLHours(hours int) Option {
	return func(e *Engine) {
		if hours > 0 {
			e.ttlHours = hours
		}
	}
}

// WithRadiusStep sets the widening increment in meters.
func WithRadiusStep(meters int) Option {
	return func(e *Engine) {
		if meters > 0 {
			e.radiusStep = meters
		}
	}
}

// WithMaxWidenings bounds the number of radius widenings per query.
func WithMaxWidenings(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxWidenings = n
		}
	}
}

// WithDefaultLimit sets the page size used when a query names none.
func WithDefaultLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultLimit = n
		}
	}
}

// WithMaxLimit caps the page size a query may ask for.
func WithMaxLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLimit = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine serves discovery queries over a candidate lister.
type Engine struct {
	list Lister
	memo Memoizer
	log  logger.Logger

	ttlHours     int
	radiusStep   int
	maxWidenings int
	defaultLimit int
	maxLimit     int
}

// New constructs an Engine over the given lister.
func New(list Lister, opts ...Option) *Engine {
	e := &Engine{
		list:         list,
		ttlHours:     defaultTTLHours,
		radiusStep:   defaultRadiusStep,
		maxWidenings: defaultMaxWidenings,
		defaultLimit: defaultLimit,
		maxLimit:     defaultMaxLimit,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Discover returns one page of venues ordered by ascending distance from
// the query origin. The full ranked list for each attempt is memoized;
// pagination slices the memoized list.
func (e *Engine) Discover(ctx context.Context, q Query) ([]Result, error) {
	start := time.Now()
	metrics.RecordDiscoveryRequest()

	if q.Limit <= 0 {
		q.Limit = e.defaultLimit
	}
	if q.Limit > e.maxLimit {
		q.Limit = e.maxLimit
	}
	if q.Skip < 0 {
		q.Skip = 0
	}
	target := q.Skip + q.Limit

	radius := q.RadiusMeters
	results, err := e.ranked(ctx, q, radius)
	if err != nil {
		return nil, err
	}

	// Fallback widening, only when a radius ceiling is in effect.
	if q.RadiusMeters > 0 {
		for attempt := 0; attempt < e.maxWidenings && len(results) < target; attempt++ {
			radius += e.radiusStep
			metrics.RecordDiscoveryWidening()
			e.debug(ctx, "widening search radius",
				logger.String("city", q.City), logger.Int("radius_m", radius))

			if results, err = e.ranked(ctx, q, radius); err != nil {
				return nil, err
			}
		}
	}

	// Still short: drop the category filter once.
	if len(results) < target && q.Category != "" {
		uncategorized := q
		uncategorized.Category = ""
		if results, err = e.ranked(ctx, uncategorized, radius); err != nil {
			return nil, err
		}
	}

	page := paginate(results, q)
	metrics.RecordDiscoveryLatency(float64(time.Since(start).Milliseconds()))
	return page, nil
}

// ranked returns the full distance-sorted result list for one attempt,
// through the memoizer when one is configured.
func (e *Engine) ranked(ctx context.Context, q Query, radius int) ([]Result, error) {
	if e.memo == nil {
		return e.build(ctx, q, radius)
	}

	params := map[string]any{
		"city":     q.City,
		"lat":      q.Origin.Lat,
		"lng":      q.Origin.Lng,
		"category": q.Category,
		"radius":   radius,
	}

	raw, err := e.memo.GetOrCompute(ctx, cacheNamespace, params, e.ttlHours, func(ctx context.Context) ([]byte, error) {
		results, err := e.build(ctx, q, radius)
		if err != nil {
			return nil, err
		}
		return json.Marshal(results)
	})
	if err != nil {
		return nil, err
	}

	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// build runs the query pipeline: fetch, filter, distance, ceiling, sort.
func (e *Engine) build(ctx context.Context, q Query, radius int) ([]Result, error) {
	candidates, err := e.list(ctx, q.City)
	if err != nil {
		return nil, err
	}

	category := strings.ToLower(strings.TrimSpace(q.Category))

	results := make([]Result, 0, len(candidates))
	for _, v := range candidates {
		// A candidate without coordinates cannot be ranked by distance.
		if !v.HasCoordinates() {
			continue
		}

		if category != "" {
			joined := strings.ToLower(strings.Join(v.Categories, " "))
			if !strings.Contains(joined, category) {
				continue
			}
		}

		dist := geo.Distance(q.Origin, *v.Location)
		if radius > 0 && dist > float64(radius) {
			continue
		}

		results = append(results, Result{Venue: v, DistanceMeters: dist})
	}

	// Stable: ties keep their fetched order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMeters < results[j].DistanceMeters
	})

	return results, nil
}

// paginate slices one page out of the ranked list, by cursor when After is
// set, otherwise by skip/limit offsets.
func paginate(results []Result, q Query) []Result {
	start := q.Skip

	if q.After != "" {
		idx := -1
		for i := range results {
			if results[i].ID == q.After {
				idx = i
				break
			}
		}
		if idx < 0 {
			// Unknown cursor: the record fell out of the ranked list, an
			// empty page lets the caller restart cleanly.
			return []Result{}
		}
		start = idx + 1
	}

	if start >= len(results) {
		return []Result{}
	}
	end := start + q.Limit
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}

func (e *Engine) debug(ctx context.Context, msg string, fields ...logger.Field) {
	if e.log == nil {
		return
	}
	e.log.Debug(ctx, msg, fields...)
}
