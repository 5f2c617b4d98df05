package weather

import (
	"context"
	"time"
)

// Snapshot is one provider reading for one city query. It is assembled
// fresh per request and never persisted.
type Snapshot struct {
	Query        string    `json:"query"`
	City         string    `json:"city"`
	TemperatureC float64   `json:"temperatureC"`
	FeelsLikeC   float64   `json:"feelsLikeC"`
	HumidityPct  int       `json:"humidityPct"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
	WindSpeedMS  float64   `json:"windSpeedMS"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// Fetcher abstracts the weather data source so handlers and tests can
// substitute the real client.
type Fetcher interface {
	// Fetch returns (nil, nil) when the provider has no data for the
	// query, for whatever reason.
	Fetch(ctx context.Context, cityQuery string) (*Snapshot, error)
}
