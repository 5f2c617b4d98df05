package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/geocoder89/weatherhub/internal/observability"
)

// Client fetches current conditions from the OpenWeatherMap
// current-weather endpoint. Responses are metric and Vietnamese.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *observability.Prom
}

// NewClient builds a provider client. metrics may be nil.
// The http.Client carries no timeout on purpose: a hung upstream blocks
// the calling handler, matching the documented failure model.
func NewClient(baseURL, apiKey string, metrics *observability.Prom) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{},
		metrics: metrics,
	}
}

// providerResponse mirrors the subset of the provider body we render.
type providerResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch issues one GET for the city query. Any non-200 status collapses
// to (nil, nil): the caller cannot tell "city not found" from "rate
// limited" and is not supposed to. No retry, no backoff.
func (c *Client) Fetch(ctx context.Context, cityQuery string) (*Snapshot, error) {
	params := url.Values{}
	params.Set("q", cityQuery)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "vi")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)

	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	start := time.Now()

	resp, err := c.http.Do(req)

	if err != nil {
		c.observe("error", start)
		return nil, fmt.Errorf("weather request %q: %w", cityQuery, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe("miss", start)
		return nil, nil
	}

	var body providerResponse

	err = json.NewDecoder(resp.Body).Decode(&body)

	if err != nil {
		c.observe("error", start)
		return nil, fmt.Errorf("decode weather response %q: %w", cityQuery, err)
	}

	snap := &Snapshot{
		Query:        cityQuery,
		City:         body.Name,
		TemperatureC: body.Main.Temp,
		FeelsLikeC:   body.Main.FeelsLike,
		HumidityPct:  body.Main.Humidity,
		WindSpeedMS:  body.Wind.Speed,
		FetchedAt:    time.Now().UTC(),
	}

	if len(body.Weather) > 0 {
		snap.Description = body.Weather[0].Description
		snap.Icon = body.Weather[0].Icon
	}

	c.observe("ok", start)

	return snap, nil
}

func (c *Client) observe(result string, start time.Time) {
	if c.metrics == nil {
		return
	}

	c.metrics.ObserveFetch(result, time.Since(start))
}
