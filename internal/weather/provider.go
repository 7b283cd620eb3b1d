package weather

import (
	"context"
)

// Provider abstracts the QWeather endpoints the service needs. Each call
// returns the decoded body with its status code untouched; interpreting the
// code is the service's job.
type Provider interface {
	LookupCity(ctx context.Context, location string) (CityLookupResponse, error)
	Now(ctx context.Context, cityID string) (NowResponse, error)
	Daily(ctx context.Context, cityID string, days int) (DailyResponse, error)
	Air(ctx context.Context, cityID string) (AirResponse, error)
	Warning(ctx context.Context, cityID string) (WarningResponse, error)
	Hourly(ctx context.Context, cityID string) (HourlyResponse, error)
}
