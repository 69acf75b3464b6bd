package domain

import (
	"context"
	"errors"
	"time"
)

// ErrWeatherUnavailable is returned when no reading can be produced (no API key, upstream down).
var ErrWeatherUnavailable = errors.New("weather unavailable")

// Weather is the current conditions shown in the widget.
// Temp is in °F and Wind in mph, both rounded to whole numbers.
// swagger:model Weather
type Weather struct {
	City      string    `json:"city"`
	Condition string    `json:"condition"`
	Temp      int       `json:"temp"`
	Wind      int       `json:"wind"`
	FetchedAt time.Time `json:"fetched_at"`
}

// WeatherProvider fetches current conditions from an upstream API.
type WeatherProvider interface {
	Current(ctx context.Context) (*Weather, error)
}

// WeatherService serves cached current conditions.
type WeatherService interface {
	Current(ctx context.Context) (*Weather, error)
	Refresh(ctx context.Context) error
}
