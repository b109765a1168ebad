package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/kakao-geocoder/internal/geocoding"
	"github.com/UnknownOlympus/kakao-geocoder/internal/metrics"
	"github.com/UnknownOlympus/kakao-geocoder/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// Reference retry policy: two attempts in total, two seconds apart.
const (
	DefaultMaxAttempts = 2
	DefaultBackoff     = 2 * time.Second
)

// Lookup results used as metric labels.
const (
	lookupEmpty        = "empty"
	lookupSuccess      = "success"
	lookupUnauthorized = "unauthorized"
	lookupExhausted    = "exhausted"
)

// SearchClient performs one classified call to the provider.
type SearchClient interface {
	Get(ctx context.Context, uri *url.URL, header http.Header) geocoding.Result
}

// Backoff returns the delay to wait after the given failed attempt (1-based).
type Backoff interface {
	Delay(attempt int) time.Duration
}

// FixedBackoff waits the same duration after every failed attempt.
type FixedBackoff time.Duration

// Delay implements Backoff.
func (b FixedBackoff) Delay(int) time.Duration {
	return time.Duration(b)
}

// UnauthorizedHandler decides the result returned when the provider rejects the API key.
type UnauthorizedHandler func(ctx context.Context, err error) *models.GeocodeResponse

// RecoveryHandler decides the result returned once every attempt has failed.
// It receives the last failure and the original address, and is called at most once per lookup.
type RecoveryHandler func(ctx context.Context, err error, address string) *models.GeocodeResponse

// AddressSearchService resolves free-text addresses through the Kakao Local API.
// It owns the retry policy: transient failures are retried with a backoff up to
// maxAttempts, a 401 stops immediately, and every terminal failure resolves to a
// handler result instead of an error.
type AddressSearchService struct {
	log            *slog.Logger         // Logger for diagnostics
	uriBuilder     geocoding.URIBuilder // Builds the request URI from the address
	client         SearchClient         // Performs the HTTP call
	apiKey         string               // Kakao REST API key
	metrics        *metrics.Metrics     // Attempt and lookup counters
	maxAttempts    int                  // Total attempts per lookup, including the first one
	backoff        Backoff              // Delay between attempts
	clock          clockwork.Clock      // Time source for backoff and latency
	onUnauthorized UnauthorizedHandler  // Authentication failure policy
	onExhausted    RecoveryHandler      // Retry exhaustion policy
}

// Option configures an AddressSearchService.
type Option func(*AddressSearchService)

// WithMaxAttempts sets the total number of attempts. Values below 1 mean a single attempt.
func WithMaxAttempts(n int) Option {
	return func(s *AddressSearchService) {
		s.maxAttempts = max(n, 1)
	}
}

// WithBackoff sets the delay strategy between attempts.
func WithBackoff(b Backoff) Option {
	return func(s *AddressSearchService) {
		if b != nil {
			s.backoff = b
		}
	}
}

// WithClock replaces the real clock, mostly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *AddressSearchService) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithUnauthorizedHandler replaces the authentication failure policy.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(s *AddressSearchService) {
		if h != nil {
			s.onUnauthorized = h
		}
	}
}

// WithRecoveryHandler replaces the retry exhaustion policy.
func WithRecoveryHandler(h RecoveryHandler) Option {
	return func(s *AddressSearchService) {
		if h != nil {
			s.onExhausted = h
		}
	}
}

// NewAddressSearchService creates the service. Without options it uses the reference
// policy: DefaultMaxAttempts, FixedBackoff(DefaultBackoff), and handlers that log and return nil.
func NewAddressSearchService(
	log *slog.Logger,
	uriBuilder geocoding.URIBuilder,
	client SearchClient,
	apiKey string,
	appMetrics *metrics.Metrics,
	opts ...Option,
) *AddressSearchService {
	if appMetrics == nil {
		appMetrics = metrics.NewMetrics(prometheus.NewRegistry())
	}

	svc := &AddressSearchService{
		log:         log,
		uriBuilder:  uriBuilder,
		client:      client,
		apiKey:      apiKey,
		metrics:     appMetrics,
		maxAttempts: DefaultMaxAttempts,
		backoff:     FixedBackoff(DefaultBackoff),
		clock:       clockwork.NewRealClock(),
	}
	svc.onUnauthorized = svc.handleUnauthorized
	svc.onExhausted = svc.recoverLookup

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// RequestAddressSearch looks up address and returns the provider response as-is.
// It returns nil for a blank address, after an authentication failure and after
// all attempts failed; it never returns an error.
func (s *AddressSearchService) RequestAddressSearch(ctx context.Context, address string) *models.GeocodeResponse {
	if strings.TrimSpace(address) == "" {
		s.metrics.SearchLookups.WithLabelValues(lookupEmpty).Inc()
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result := s.attempt(ctx, address)

		switch result.Kind {
		case geocoding.KindSuccess:
			s.metrics.SearchLookups.WithLabelValues(lookupSuccess).Inc()
			return result.Response
		case geocoding.KindUnauthorized:
			s.metrics.SearchLookups.WithLabelValues(lookupUnauthorized).Inc()
			return s.onUnauthorized(ctx, result.Err)
		}

		lastErr = result.Err
		s.log.WarnContext(ctx, "Address search attempt failed",
			"address", address,
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"status", result.StatusCode,
			"error", result.Err,
		)

		if attempt == s.maxAttempts {
			break
		}

		if err := s.wait(ctx, s.backoff.Delay(attempt)); err != nil {
			lastErr = fmt.Errorf("backoff interrupted: %w: %w", err, lastErr)
			break
		}
	}

	s.metrics.SearchLookups.WithLabelValues(lookupExhausted).Inc()

	return s.onExhausted(ctx, lastErr, address)
}

// attempt runs one full call: URI build, header, dispatch.
func (s *AddressSearchService) attempt(ctx context.Context, address string) geocoding.Result {
	uri, err := s.uriBuilder.BuildAddressSearchURI(address)
	if err != nil {
		s.metrics.SearchAttempts.WithLabelValues(geocoding.KindTransient.String()).Inc()
		return geocoding.Transient(0, fmt.Errorf("failed to build request URI: %w", err))
	}

	header := http.Header{}
	header.Set("Authorization", "KakaoAK "+s.apiKey)

	start := s.clock.Now()
	result := s.client.Get(ctx, uri, header)
	s.metrics.RequestSeconds.Observe(s.clock.Since(start).Seconds())
	s.metrics.SearchAttempts.WithLabelValues(result.Kind.String()).Inc()

	return result
}

// wait blocks for d or until ctx is done.
func (s *AddressSearchService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := s.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}

func (s *AddressSearchService) handleUnauthorized(ctx context.Context, err error) *models.GeocodeResponse {
	s.log.ErrorContext(ctx, "Kakao API rejected the request, check the REST API key", "error", err)
	return nil
}

func (s *AddressSearchService) recoverLookup(ctx context.Context, err error, address string) *models.GeocodeResponse {
	s.log.ErrorContext(ctx, "All the retries failed", "address", address, "error", err)
	return nil
}
