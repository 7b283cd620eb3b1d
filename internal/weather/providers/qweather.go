package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/heweather-bot/internal/weather"
)

// QWeatherProvider implements the weather.Provider interface for QWeather.
type QWeatherProvider struct {
	name    string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewQWeatherProvider(client *http.Client, apiHost string, creds *CredentialProvider) *QWeatherProvider {
	return &QWeatherProvider{
		name: "qweather",
		httpCfg: HTTPClientConfig{
			Client:      client,
			BaseURL:     apiHost,
			Credentials: creds,
		},
		circuit: newCircuitBreaker("qweather", breakerOpenFor),
	}
}

func (p *QWeatherProvider) Name() string {
	return p.name
}

// LookupCity asks the geo API for the single best match.
func (p *QWeatherProvider) LookupCity(ctx context.Context, location string) (weather.CityLookupResponse, error) {
	var out weather.CityLookupResponse
	q := url.Values{}
	q.Set("location", location)
	q.Set("number", "1")
	err := p.get(ctx, "/geo/v2/city/lookup", q, &out.Code, &out)
	return out, err
}

func (p *QWeatherProvider) Now(ctx context.Context, cityID string) (weather.NowResponse, error) {
	var out weather.NowResponse
	err := p.get(ctx, "/v7/weather/now", byLocation(cityID), &out.Code, &out)
	return out, err
}

func (p *QWeatherProvider) Daily(ctx context.Context, cityID string, days int) (weather.DailyResponse, error) {
	var out weather.DailyResponse
	err := p.get(ctx, fmt.Sprintf("/v7/weather/%dd", days), byLocation(cityID), &out.Code, &out)
	return out, err
}

func (p *QWeatherProvider) Air(ctx context.Context, cityID string) (weather.AirResponse, error) {
	var out weather.AirResponse
	err := p.get(ctx, "/v7/air/now", byLocation(cityID), &out.Code, &out)
	return out, err
}

// Warning returns code "204" when the city has no active warnings.
func (p *QWeatherProvider) Warning(ctx context.Context, cityID string) (weather.WarningResponse, error) {
	var out weather.WarningResponse
	err := p.get(ctx, "/v7/warning/now", byLocation(cityID), &out.Code, &out)
	return out, err
}

func (p *QWeatherProvider) Hourly(ctx context.Context, cityID string) (weather.HourlyResponse, error) {
	var out weather.HourlyResponse
	err := p.get(ctx, "/v7/weather/24h", byLocation(cityID), &out.Code, &out)
	return out, err
}

// get decodes the response into out. An empty HTTP 204 body is reported
// through code as the provider's own "no data" status.
func (p *QWeatherProvider) get(ctx context.Context, path string, q url.Values, code *string, out any) error {
	status, err := doRequest(ctx, p.httpCfg, p.circuit, path, q, out)
	if err != nil {
		return err
	}
	if status == http.StatusNoContent && *code == "" {
		*code = weather.CodeNoData
	}
	return nil
}

func byLocation(cityID string) url.Values {
	q := url.Values{}
	q.Set("location", cityID)
	return q
}
