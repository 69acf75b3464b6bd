package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"showscheduler/internal/domain"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"
)

// refreshKey collapses concurrent upstream fetches into one.
const refreshKey = "current"

type weatherService struct {
	provider domain.WeatherProvider
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	group  singleflight.Group
	mu     sync.RWMutex
	cached *domain.Weather
}

// NewWeatherService caches provider readings for ttl. A stale reading is
// served when a refresh fails.
func NewWeatherService(provider domain.WeatherProvider, ttl time.Duration, logger *slog.Logger) domain.WeatherService {
	return &weatherService{
		provider: provider,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *weatherService) Current(ctx context.Context) (*domain.Weather, error) {
	if w := s.fresh(); w != nil {
		return w, nil
	}
	v, err, _ := s.group.Do(refreshKey, func() (any, error) {
		// A caller that arrives just after another refresh finished finds the cache warm.
		if w := s.fresh(); w != nil {
			return w, nil
		}
		return s.fetch(ctx)
	})
	if err != nil {
		s.mu.RLock()
		cached := s.cached
		s.mu.RUnlock()
		if cached != nil {
			s.logger.WarnContext(ctx, "serving stale weather", "fetched_at", cached.FetchedAt, "err", err)
			w := *cached
			return &w, nil
		}
		return nil, err
	}
	w := *v.(*domain.Weather)
	return &w, nil
}

func (s *weatherService) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do(refreshKey, func() (any, error) {
		return s.fetch(ctx)
	})
	return err
}

// fresh returns a copy of the cached reading if it is younger than ttl.
func (s *weatherService) fresh() *domain.Weather {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil || s.now().Sub(s.cached.FetchedAt) >= s.ttl {
		return nil
	}
	w := *s.cached
	return &w
}

func (s *weatherService) fetch(ctx context.Context) (*domain.Weather, error) {
	w, err := s.provider.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh weather: %w", err)
	}
	if w.FetchedAt.IsZero() {
		w.FetchedAt = s.now().UTC()
	}
	s.mu.Lock()
	s.cached = w
	s.mu.Unlock()
	return w, nil
}

// NewWeatherRefresher schedules svc.Refresh on the cron spec. The caller
// starts and stops the returned scheduler.
func NewWeatherRefresher(svc domain.WeatherService, spec string, timeout time.Duration, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := svc.Refresh(ctx); err != nil {
			if errors.Is(err, domain.ErrWeatherUnavailable) {
				logger.Debug("weather refresh skipped", "err", err)
				return
			}
			logger.Warn("weather refresh failed", "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule weather refresh %q: %w", spec, err)
	}
	return c, nil
}
