package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"showscheduler/internal/domain"
)

// DefaultBaseURL is the public OpenWeatherMap endpoint.
const DefaultBaseURL = "http://api.openweathermap.org"

// Config configures the current-conditions client.
type Config struct {
	BaseURL string
	APIKey  string
	City    string
}

type client struct {
	http *http.Client
	cfg  Config
	now  func() time.Time
}

// NewClient returns a WeatherProvider backed by the OpenWeatherMap
// current weather endpoint in imperial units.
func NewClient(httpClient *http.Client, cfg Config) domain.WeatherProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &client{http: httpClient, cfg: cfg, now: time.Now}
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (c *client) Current(ctx context.Context) (*domain.Weather, error) {
	if c.cfg.APIKey == "" {
		return nil, domain.ErrWeatherUnavailable
	}
	q := url.Values{}
	q.Set("q", c.cfg.City)
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "imperial")
	endpoint := c.cfg.BaseURL + "/data/2.5/weather?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create weather request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweathermap returned status: %d", resp.StatusCode)
	}

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if len(data.Weather) == 0 {
		return nil, errors.New("openweathermap response has no weather conditions")
	}

	city := c.cfg.City
	if data.Name != "" {
		city = data.Name
	}
	return &domain.Weather{
		City:      city,
		Condition: data.Weather[0].Main,
		Temp:      int(math.RoundToEven(data.Main.Temp)),
		Wind:      int(math.RoundToEven(data.Wind.Speed)),
		FetchedAt: c.now().UTC(),
	}, nil
}
