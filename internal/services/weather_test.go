package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"showscheduler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls int
	temp  int
	err   error
}

func (f *fakeProvider) Current(context.Context) (*domain.Weather, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Weather{City: "Dallas", Condition: "Clear", Temp: f.temp}, nil
}

func TestWeatherService_Current(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{temp: 70}
	svc := NewWeatherService(provider, 10*time.Minute, testLogger).(*weatherService)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	w, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 70, w.Temp)
	assert.Equal(t, now, w.FetchedAt)

	provider.temp = 99
	now = now.Add(5 * time.Minute)
	w, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 70, w.Temp, "served from cache")
	assert.Equal(t, 1, provider.calls)

	now = now.Add(6 * time.Minute)
	w, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 99, w.Temp)
	assert.Equal(t, 2, provider.calls)

	provider.err = errors.New("upstream 502")
	now = now.Add(time.Hour)
	w, err = svc.Current(ctx)
	require.NoError(t, err, "stale reading beats no reading")
	assert.Equal(t, 99, w.Temp)
}

// gatedProvider blocks every fetch until release is closed.
type gatedProvider struct {
	calls   atomic.Int32
	release chan struct{}
}

func (g *gatedProvider) Current(context.Context) (*domain.Weather, error) {
	g.calls.Add(1)
	<-g.release
	return &domain.Weather{City: "Dallas", Condition: "Clouds", Temp: 88}, nil
}

func TestWeatherService_ConcurrentCallersShareOneFetch(t *testing.T) {
	provider := &gatedProvider{release: make(chan struct{})}
	svc := NewWeatherService(provider, 10*time.Minute, testLogger)

	var wg sync.WaitGroup
	temps := make([]int, 8)
	for i := range temps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := svc.Current(context.Background())
			if err == nil {
				temps[i] = w.Temp
			}
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(provider.release)
	wg.Wait()

	assert.Equal(t, int32(1), provider.calls.Load())
	for _, temp := range temps {
		assert.Equal(t, 88, temp)
	}
}

func TestWeatherService_Unavailable(t *testing.T) {
	svc := NewWeatherService(&fakeProvider{err: domain.ErrWeatherUnavailable}, time.Minute, testLogger)
	_, err := svc.Current(context.Background())
	require.ErrorIs(t, err, domain.ErrWeatherUnavailable)
}

func TestNewWeatherRefresher(t *testing.T) {
	svc := NewWeatherService(&fakeProvider{}, time.Minute, testLogger)

	c, err := NewWeatherRefresher(svc, "*/10 * * * *", time.Second, testLogger)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = NewWeatherRefresher(svc, "every so often", time.Second, testLogger)
	require.Error(t, err)
}
