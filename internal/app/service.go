// Package service provides the core business service composing the venue
// store, scoring engine, cache-aside client, rate limiter, and discovery
// engine.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/nitecap/internal/adapters/cache"
	"github.com/okian/nitecap/internal/adapters/ratelimit"
	"github.com/okian/nitecap/internal/adapters/repository"
	"github.com/okian/nitecap/internal/domain/discovery"
	"github.com/okian/nitecap/internal/domain/scoring"
	"github.com/okian/nitecap/internal/domain/venue"
	"github.com/okian/nitecap/pkg/logger"
	"github.com/okian/nitecap/pkg/metrics"
)

// Service defaults; each is overridable with an option.
const (
	defaultCacheTTLHours = 6
	defaultRateWindow    = 60 * time.Second
	defaultRateLimit     = 90
	defaultRadiusStep    = 1000
	defaultMaxWidenings  = 3
	defaultPageSize      = 20
	defaultMaxPageSize   = 100
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the venue store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCacheBackend sets the cache backend. Defaults to an in-memory
// backend, which keeps the cache layer active without external services.
func WithCacheBackend(backend cache.Backend) Option {
	return func(s *Service) {
		if backend != nil {
			s.cacheBackend = backend
		}
	}
}

// WithCacheTTLHours sets the discovery result cache TTL.
func WithCacheTTLHours(hours int) Option {
	return func(s *Service) {
		if hours > 0 {
			s.cacheTTLHours = hours
		}
	}
}

// WithSingleFlight de-duplicates concurrent cache loads per fingerprint.
func WithSingleFlight(enabled bool) Option {
	return func(s *Service) {
		s.singleFlight = enabled
	}
}

// WithSocialValidator injects the social-profile scoring capability.
func WithSocialValidator(v scoring.SocialValidator) Option {
	return func(s *Service) {
		s.social = v
	}
}

// WithLimiter shares an already-constructed rate limiter, so the service
// and enrichment collaborators draw from one admission budget. Without it
// the service builds its own from the window/limit options.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithRateWindow sets the outbound rate limiter window.
func WithRateWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.rateWindow = d
		}
	}
}

// WithRateLimit sets the outbound admissions per window.
func WithRateLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rateLimit = n
		}
	}
}

// WithRadiusStep sets the discovery widening increment in meters.
func WithRadiusStep(meters int) Option {
	return func(s *Service) {
		if meters > 0 {
			s.radiusStep = meters
		}
	}
}

// WithMaxWidenings bounds discovery radius widenings per query.
func WithMaxWidenings(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxWidenings = n
		}
	}
}

// WithDefaultPageSize sets the page size used when a query names none.
func WithDefaultPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultPageSize = n
		}
	}
}

// WithMaxPageSize caps the page size a query may ask for.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// Service implements ingestion, rescoring, and discovery for nightlife
// venues. Candidates are scored once before persistence; rejected ones are
// never stored.
type Service struct {
	mu sync.RWMutex

	store        repository.Store
	cacheBackend cache.Backend
	cacheClient  *cache.Client
	limiter      *ratelimit.Limiter
	scorer       *scoring.Engine
	finder       *discovery.Engine
	social       scoring.SocialValidator

	cacheTTLHours   int
	singleFlight    bool
	rateWindow      time.Duration
	rateLimit       int
	radiusStep      int
	maxWidenings    int
	defaultPageSize int
	maxPageSize     int

	started bool
	log     logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheTTLHours:   defaultCacheTTLHours,
		rateWindow:      defaultRateWindow,
		rateLimit:       defaultRateLimit,
		radiusStep:      defaultRadiusStep,
		maxWidenings:    defaultMaxWidenings,
		defaultPageSize: defaultPageSize,
		maxPageSize:     defaultMaxPageSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start wires the service components together.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.log == nil {
		s.log = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.cacheBackend == nil {
		s.cacheBackend = cache.NewMemoryBackend()
	}

	cacheOpts := []cache.Option{cache.WithLogger(s.log)}
	if s.singleFlight {
		cacheOpts = append(cacheOpts, cache.WithSingleFlight())
	}
	s.cacheClient = cache.New(s.cacheBackend, cacheOpts...)

	if s.limiter == nil {
		s.limiter = ratelimit.New(
			ratelimit.WithWindow(s.rateWindow),
			ratelimit.WithLimit(s.rateLimit),
		)
	}

	scoringOpts := []scoring.Option{}
	if s.social != nil {
		scoringOpts = append(scoringOpts, scoring.WithSocialValidator(s.social))
	}
	s.scorer = scoring.New(scoringOpts...)

	s.finder = discovery.New(s.store.ListByCity,
		discovery.WithMemoizer(s.cacheClient),
		discovery.WithTTLHours(s.cacheTTLHours),
		discovery.WithRadiusStep(s.radiusStep),
		discovery.WithMaxWidenings(s.maxWidenings),
		discovery.WithDefaultLimit(s.defaultPageSize),
		discovery.WithMaxLimit(s.maxPageSize),
		discovery.WithLogger(s.log),
	)

	s.started = true
	s.log.Info(ctx, "venue service started",
		logger.Int("cache_ttl_hours", s.cacheTTLHours),
		logger.Bool("single_flight", s.singleFlight),
		logger.Int("rate_limit", s.rateLimit),
	)

	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.log.Info(context.Background(), "venue service stopped")
}

// Ingest scores a candidate and persists it only on acceptance. Accepted
// candidates without an ID get one minted. The scoring result comes back
// either way so callers can log or audit the decision.
func (s *Service) Ingest(ctx context.Context, v venue.Venue) (scoring.Result, error) {
	res := s.scorer.Score(v)
	if !res.Accept {
		metrics.RecordVenueRejected()
		s.log.Debug(ctx, "candidate rejected",
			logger.String("name", v.Name), logger.Int("score", res.Score))
		return res, nil
	}

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if err := s.store.Upsert(ctx, v); err != nil {
		return res, err
	}

	metrics.RecordVenueAccepted()
	return res, nil
}

// Rescore re-evaluates a venue after its enrichment fields changed. A
// still-accepted venue is re-persisted; a stored venue that no longer
// passes is removed.
func (s *Service) Rescore(ctx context.Context, v venue.Venue) (scoring.Result, error) {
	res := s.scorer.Score(v)
	if res.Accept {
		if err := s.store.Upsert(ctx, v); err != nil {
			return res, err
		}
		return res, nil
	}

	metrics.RecordVenueRejected()
	if v.ID != "" {
		if err := s.store.Delete(ctx, v.ID); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Discover serves one page of distance-ranked venues.
func (s *Service) Discover(ctx context.Context, q discovery.Query) ([]discovery.Result, error) {
	return s.finder.Discover(ctx, q)
}

// Limiter exposes the outbound admission gate for enrichment collaborators.
func (s *Service) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		count := s.store.Count(ctx)
		stats["venues"] = count
		metrics.UpdateVenuesTracked(count)
	}
	return stats
}
