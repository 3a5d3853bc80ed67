package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestResolveDefaults(t *testing.T) {
	cfg := Resolve()

	require.Equal(t, ProviderOpenMeteo, cfg.Provider)
	require.Equal(t, "https://geocoding-api.open-meteo.com/v1", cfg.GeocodingURL)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 5, cfg.RateLimitBurst)
	require.Equal(t, models.Metric, cfg.DefaultUnits)
	require.Equal(t, "default", cfg.Origin("WEATHER_PROVIDER"))
}

func TestResolvePrefersEarlierSources(t *testing.T) {
	runtime := NewMapSource("runtime", map[string]string{"WEATHER_API_KEY": "runtime-key"})
	build := NewMapSource("build", map[string]string{
		"WEATHER_API_KEY":  "build-key",
		"WEATHER_PROVIDER": "openweather",
	})

	cfg := Resolve(runtime, build)

	require.Equal(t, "runtime-key", cfg.APIKey)
	require.Equal(t, "runtime", cfg.Origin("WEATHER_API_KEY"))
	require.Equal(t, ProviderOpenWeather, cfg.Provider)
	require.Equal(t, "build", cfg.Origin("WEATHER_PROVIDER"))
}

func TestResolveEmptyValueFallsThrough(t *testing.T) {
	runtime := NewMapSource("runtime", map[string]string{"WEATHER_API_KEY": ""})
	build := NewMapSource("build", map[string]string{"WEATHER_API_KEY": "build-key"})

	require.Equal(t, "build-key", Resolve(runtime, build).APIKey)
}

func TestResolveLegacyKeyAlias(t *testing.T) {
	src := NewMapSource("env", map[string]string{"OPENWEATHER_API_KEY": "legacy"})

	require.Equal(t, "legacy", Resolve(src).APIKey)
}

func TestResolveMissingKeyWarnsAndProceeds(t *testing.T) {
	buf := captureLog(t)

	cfg := Resolve(NewMapSource("env", map[string]string{"WEATHER_PROVIDER": "OpenWeather"}))

	require.Equal(t, ProviderOpenWeather, cfg.Provider)
	require.Empty(t, cfg.APIKey)
	require.Contains(t, buf.String(), "WEATHER_API_KEY")
}

func TestResolveMalformedNumbersFallBack(t *testing.T) {
	buf := captureLog(t)

	cfg := Resolve(NewMapSource("env", map[string]string{
		"HTTP_TIMEOUT":     "soon",
		"RATE_LIMIT_RPS":   "-1",
		"RATE_LIMIT_BURST": "0",
		"FORECAST_DAYS":    "7",
		"HOURLY_POINTS":    "0",
		"DEFAULT_UNITS":    "kelvin",
	}))

	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, float64(5), cfg.RateLimitRPS)
	require.Equal(t, 5, cfg.RateLimitBurst)
	require.Equal(t, 7, cfg.ForecastDays)
	require.Equal(t, 0, cfg.HourlyPoints)
	require.Equal(t, models.Metric, cfg.DefaultUnits)
	require.Equal(t, "default", cfg.Origin("HTTP_TIMEOUT"))
	require.Equal(t, "default", cfg.Origin("RATE_LIMIT_BURST"))
	require.Contains(t, buf.String(), "RATE_LIMIT_BURST")
}

func TestUnknownProviderFallsBack(t *testing.T) {
	captureLog(t)

	cfg := Resolve(NewMapSource("env", map[string]string{"WEATHER_PROVIDER": "nws"}))
	require.Equal(t, ProviderOpenMeteo, cfg.Provider)
}

func TestWeatherAPIProvider(t *testing.T) {
	cfg := Resolve(NewMapSource("env", map[string]string{
		"WEATHER_PROVIDER": "WeatherAPI",
		"WEATHER_API_KEY":  "k",
		"WEATHERAPI_URL":   "http://localhost:9000/v1/",
	}))

	require.Equal(t, ProviderWeatherAPI, cfg.Provider)
	require.True(t, cfg.RequiresAPIKey())
	require.Equal(t, "http://localhost:9000/v1", cfg.WeatherAPIURL)
}

func TestDotenvSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WEATHER_API_KEY=from-file\nSERVER_PORT=9090\n"), 0o600))

	cfg := Resolve(NewMapSource("env", map[string]string{"SERVER_PORT": "7070"}), NewDotenvSource(path))

	require.Equal(t, "from-file", cfg.APIKey)
	require.Equal(t, "dotenv", cfg.Origin("WEATHER_API_KEY"))
	require.Equal(t, "7070", cfg.ServerPort)

	_, ok := NewDotenvSource(filepath.Join(t.TempDir(), "missing")).Lookup("WEATHER_API_KEY")
	require.False(t, ok, "missing file must yield an empty source")
}

func TestEnvSource(t *testing.T) {
	t.Setenv("WEATHER_URL", "http://localhost:9999/v1/")

	require.Equal(t, "http://localhost:9999/v1", Resolve(EnvSource{}).WeatherURL)
}
