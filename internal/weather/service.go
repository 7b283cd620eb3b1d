package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Options are the query-independent settings of a Service.
type Options struct {
	// APITier is the QWeather subscription: 0 free, 1 standard, 2 premium.
	APITier int
	// ForecastDays is the length of the daily forecast.
	ForecastDays int
}

// Service resolves cities and fetches the five weather facets for them.
type Service struct {
	provider Provider
	opts     Options
}

// ValidateForecastDays rejects forecast lengths the subscription tier does
// not allow. The free tier only serves 3 to 7 days.
func ValidateForecastDays(apiTier, days int) error {
	if apiTier == 0 && (days < 3 || days > 7) {
		return &ConfigError{Msg: fmt.Sprintf("when api type is 0 (free subscription), forecast days must be within 3..7, got %d", days)}
	}
	return nil
}

// NewService creates a new Service. It fails with a ConfigError when the
// options are inconsistent, so no request is ever made with them.
func NewService(provider Provider, opts Options) (*Service, error) {
	if err := ValidateForecastDays(opts.APITier, opts.ForecastDays); err != nil {
		return nil, err
	}
	return &Service{
		provider: provider,
		opts:     opts,
	}, nil
}

// Load resolves the location text and fetches a validated Snapshot for it.
func (s *Service) Load(ctx context.Context, location string) (*Snapshot, error) {
	city, err := s.ResolveCity(ctx, location)
	if err != nil {
		return nil, err
	}
	return s.FetchAll(ctx, city)
}

// FetchAll retrieves the five facets for the city concurrently and waits for
// all of them. A failing facet neither cancels nor hides the others. Errors
// from the provider are returned unchanged; status codes are validated by
// aggregateFacets.
func (s *Service) FetchAll(ctx context.Context, city ResolvedCity) (*Snapshot, error) {
	var (
		wg   sync.WaitGroup
		res  facetResults
		errs [5]error
	)

	log.Printf("DEBUG: FetchAll called for %s (%s), %d forecast days", city.Name, city.ID, s.opts.ForecastDays)

	run := func(i int, fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fetch()
		}()
	}

	run(0, func() (err error) { res.now, err = s.provider.Now(ctx, city.ID); return })
	run(1, func() (err error) { res.daily, err = s.provider.Daily(ctx, city.ID, s.opts.ForecastDays); return })
	run(2, func() (err error) { res.air, err = s.provider.Air(ctx, city.ID); return })
	run(3, func() (err error) { res.warning, err = s.provider.Warning(ctx, city.ID); return })
	run(4, func() (err error) { res.hourly, err = s.provider.Hourly(ctx, city.ID); return })

	wg.Wait()

	names := [5]string{FacetNow, FacetDaily, FacetAir, FacetWarning, FacetHourly}
	var first error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if first == nil {
			first = err
			continue
		}
		log.Printf("ERROR: facet %s for %s also failed: %v", names[i], city.ID, err)
	}
	if first != nil {
		return nil, first
	}

	return aggregateFacets(city, res)
}
