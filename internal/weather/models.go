package weather

import (
	"time"
)

// Status codes reported in the "code" field of every QWeather response.
const (
	CodeOK       = "200"
	CodeNoData   = "204"
	CodeNotFound = "404"
)

// HourlyType selects how the 24-hour forecast is shown.
type HourlyType int

const (
	// Hourly12h shows the next 12 hours.
	Hourly12h HourlyType = 1
	// Hourly24h shows every other hour of the next 24.
	Hourly24h HourlyType = 2
)

// ResolvedCity is a QWeather location id plus its canonical display name.
type ResolvedCity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Now is the current-conditions block of /v7/weather/now.
type Now struct {
	ObsTime   string `json:"obsTime"`
	Temp      string `json:"temp"`
	Icon      string `json:"icon"`
	Text      string `json:"text"`
	WindScale string `json:"windScale"`
	WindDir   string `json:"windDir"`
	Humidity  string `json:"humidity"`
	Precip    string `json:"precip"`
	Vis       string `json:"vis"`
}

// Daily is one day of /v7/weather/{n}d.
type Daily struct {
	FxDate    string `json:"fxDate"`
	TempMax   string `json:"tempMax"`
	TempMin   string `json:"tempMin"`
	TextDay   string `json:"textDay"`
	TextNight string `json:"textNight"`
	IconDay   string `json:"iconDay"`
	IconNight string `json:"iconNight"`
}

// Air is the real-time air quality block of /v7/air/now.
type Air struct {
	Category string `json:"category"`
	AQI      string `json:"aqi"`
	PM2p5    string `json:"pm2p5"`
	PM10     string `json:"pm10"`
	O3       string `json:"o3"`
	CO       string `json:"co"`
	NO2      string `json:"no2"`
	SO2      string `json:"so2"`
}

// Warning is one active weather warning.
type Warning struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	PubTime string `json:"pubTime"`
	Text    string `json:"text"`
}

// Hourly is one hour of /v7/weather/24h.
type Hourly struct {
	FxTime string `json:"fxTime"`
	Temp   string `json:"temp"`
	Icon   string `json:"icon"`
	Text   string `json:"text"`
}

// Raw provider responses. Every facet carries its own status code.
type (
	CityLookupResponse struct {
		Code     string         `json:"code"`
		Location []ResolvedCity `json:"location"`
	}

	NowResponse struct {
		Code string `json:"code"`
		Now  Now    `json:"now"`
	}

	DailyResponse struct {
		Code  string  `json:"code"`
		Daily []Daily `json:"daily"`
	}

	AirResponse struct {
		Code string `json:"code"`
		Now  *Air   `json:"now"`
	}

	WarningResponse struct {
		Code    string    `json:"code"`
		Warning []Warning `json:"warning"`
	}

	HourlyResponse struct {
		Code   string   `json:"code"`
		Hourly []Hourly `json:"hourly"`
	}
)

// Snapshot is the complete, validated set of facets for one city.
// Air and Warnings are nil when the provider reported no data.
type Snapshot struct {
	City      ResolvedCity `json:"city"`
	Now       Now          `json:"now"`
	Daily     []Daily      `json:"daily"`
	Air       *Air         `json:"air,omitempty"`
	Warnings  []Warning    `json:"warnings,omitempty"`
	Hourly    []Hourly     `json:"hourly"`
	FetchedAt time.Time    `json:"fetchedAt"` // always UTC
}

// CityName returns the canonical display name of the snapshot's city.
func (s *Snapshot) CityName() string {
	return s.City.Name
}
