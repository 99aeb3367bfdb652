package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/climatrix/climatrix/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.WeatherConfig{APIURL: server.URL, APIKey: "test-key", Timeout: 2 * time.Second})
}

func TestCurrentByCityProxiesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "New Delhi", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		_, _ = w.Write([]byte(`{"name":"New Delhi","main":{"temp":33.2}}`))
	})

	body, err := client.CurrentByCity(context.Background(), "New Delhi")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"New Delhi","main":{"temp":33.2}}`, string(body))

	current, err := client.Current(context.Background(), "New Delhi")
	require.NoError(t, err)
	assert.Equal(t, 33.2, current.Main.Temp)
}

func TestUnknownCity(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	for i := 0; i < 8; i++ {
		_, err := client.Forecast(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, ErrCityNotFound)
	}

	assert.EqualValues(t, 8, calls.Load())
	assert.Equal(t, "closed", client.BreakerState())
}

func TestBreakerOpensOnUpstreamFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_, err := client.CurrentByCoords(context.Background(), 19.07, 72.87)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	}

	_, err := client.CurrentByCoords(context.Background(), 19.07, 72.87)
	assert.Error(t, err)
	assert.EqualValues(t, 5, calls.Load())
	assert.Equal(t, "open", client.BreakerState())
}

func TestNotConfigured(t *testing.T) {
	client := NewClient(config.WeatherConfig{APIURL: "http://127.0.0.1:1"})

	_, err := client.AirQuality(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, client.Configured())
}

func TestAirPollutionDecode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/air_pollution", r.URL.Path)
		assert.Equal(t, "12.97", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"list":[{"dt":1700000000,"main":{"aqi":3},"components":{"pm2_5":41.5,"pm10":60.1,"no2":12}}]}`))
	})

	pollution, err := client.AirPollution(context.Background(), 12.97, 77.59)
	require.NoError(t, err)
	require.Len(t, pollution.List, 1)
	assert.Equal(t, 41.5, pollution.List[0].Components.PM25)
}

func TestDailyTrend(t *testing.T) {
	day := func(d, hour int) int64 {
		return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC).Unix()
	}

	entries := []ForecastEntry{
		{Dt: day(3, 0), Main: MainReadings{Temp: 20}},
		{Dt: day(1, 6), Main: MainReadings{Temp: 30.04}},
		{Dt: day(1, 12), Main: MainReadings{Temp: 31.06}},
		{Dt: day(1, 18), Main: MainReadings{Temp: 29.25}},
		{Dt: day(2, 23), Main: MainReadings{Temp: -1.25}},
	}

	trend := DailyTrend(entries)
	require.Len(t, trend, 3)

	assert.Equal(t, "2025-06-01", trend[0].Date)
	assert.Equal(t, 30.1, trend[0].AvgTemp)
	assert.Equal(t, 31.1, trend[0].MaxTemp)
	assert.Equal(t, 29.3, trend[0].MinTemp)

	assert.Equal(t, "2025-06-02", trend[1].Date)
	assert.Equal(t, -1.2, trend[1].AvgTemp)
	assert.Equal(t, "2025-06-03", trend[2].Date)
}

func TestDailyTrendCapsDays(t *testing.T) {
	var entries []ForecastEntry
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 9; i >= 0; i-- {
		entries = append(entries, ForecastEntry{Dt: start.AddDate(0, 0, i).Unix(), Main: MainReadings{Temp: float64(i)}})
	}

	trend := DailyTrend(entries)
	require.Len(t, trend, MaxTrendDays)
	assert.Equal(t, "2025-01-01", trend[0].Date)
	assert.Equal(t, "2025-01-07", trend[6].Date)
	assert.Empty(t, DailyTrend(nil))
}

func TestAQIFromPM25(t *testing.T) {
	tests := []struct {
		pm25 float64
		aqi  int
	}{
		{0, 0},
		{12.0, 50},
		{35.4, 100},
		{35.5, 101},
		{55.4, 150},
		{150.4, 200},
		{500.4, 500},
		{900, 500},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.aqi, AQIFromPM25(tt.pm25), "pm25=%v", tt.pm25)
	}
}
