package weather

import "time"

// Facet names as they appear in validation errors.
const (
	FacetNow     = "Now"
	FacetDaily   = "Daily"
	FacetAir     = "Air"
	FacetWarning = "Warning"
	FacetHourly  = "Hourly"
)

// facetResults holds the raw outcome of the five concurrent retrievals.
type facetResults struct {
	now     NowResponse
	daily   DailyResponse
	air     AirResponse
	warning WarningResponse
	hourly  HourlyResponse
}

// aggregateFacets validates the five facet responses and combines them into
// a Snapshot. Every failing facet is listed in the returned APIError, not
// just the first. A "204" warning or air facet means no data and is valid.
func aggregateFacets(city ResolvedCity, r facetResults) (*Snapshot, error) {
	var failed []FacetStatus

	check := func(facet, code string, optional bool) {
		if code == CodeOK || (optional && code == CodeNoData) {
			return
		}
		failed = append(failed, FacetStatus{Facet: facet, Code: code})
	}

	check(FacetNow, r.now.Code, false)
	check(FacetDaily, r.daily.Code, false)
	check(FacetAir, r.air.Code, true)
	check(FacetWarning, r.warning.Code, true)
	check(FacetHourly, r.hourly.Code, false)

	if len(failed) > 0 {
		return nil, &APIError{Facets: failed}
	}

	snapshot := &Snapshot{
		City:      city,
		Now:       r.now.Now,
		Daily:     r.daily.Daily,
		Hourly:    r.hourly.Hourly,
		FetchedAt: time.Now().UTC(),
	}
	if r.air.Code == CodeOK && r.air.Now != nil {
		air := *r.air.Now
		snapshot.Air = &air
	}
	if r.warning.Code == CodeOK && len(r.warning.Warning) > 0 {
		snapshot.Warnings = r.warning.Warning
	}
	return snapshot, nil
}
