package fetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
	"weather-dashboard/providers"
)

type stubGeocoder struct {
	loc   models.Location
	err   error
	calls []string
}

func (s *stubGeocoder) Geocode(ctx context.Context, city string) (models.Location, error) {
	s.calls = append(s.calls, city)
	return s.loc, s.err
}

type stubSource struct {
	snap  *models.WeatherSnapshot
	err   error
	calls []models.Location
}

func (s *stubSource) Name() string      { return "stub" }
func (s *stubSource) IsAvailable() bool { return true }

func (s *stubSource) GetWeather(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	s.calls = append(s.calls, loc)
	return s.snap, s.err
}

func TestGetWeatherRunsStepsInOrder(t *testing.T) {
	geo := &stubGeocoder{loc: models.Location{Name: "Oslo", Country: "Norway", Latitude: 59.91, Longitude: 10.75}}
	src := &stubSource{snap: &models.WeatherSnapshot{Temperature: 3, Location: models.Location{Timezone: "Europe/Oslo"}}}

	snap, err := New(geo, src).GetWeather(context.Background(), "  Oslo ")
	require.NoError(t, err)

	require.Equal(t, []string{"Oslo"}, geo.calls)
	require.Len(t, src.calls, 1)
	require.Equal(t, 59.91, src.calls[0].Latitude)
	require.Equal(t, "Oslo", snap.Location.Name)
	require.Equal(t, "Europe/Oslo", snap.Location.Timezone)
	require.False(t, snap.FetchedAt.IsZero(), "FetchedAt not set")
}

func TestGetWeatherGeocodeFailureSkipsWeather(t *testing.T) {
	geo := &stubGeocoder{err: providers.ErrCityNotFound}
	src := &stubSource{}

	_, err := New(geo, src).GetWeather(context.Background(), "Atlantis")
	require.ErrorIs(t, err, providers.ErrCityNotFound)
	require.Empty(t, src.calls, "weather requested after failed geocode")
}

func TestGetWeatherWrapsSourceError(t *testing.T) {
	geo := &stubGeocoder{loc: models.Location{Name: "Oslo"}}
	src := &stubSource{err: &providers.StatusError{Op: providers.OpWeather, Code: 503}}

	_, err := New(geo, src).GetWeather(context.Background(), "Oslo")

	var se *providers.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 503, se.Code)
}

func TestGetWeatherEmptyQuery(t *testing.T) {
	geo := &stubGeocoder{}

	_, err := New(geo, &stubSource{}).GetWeather(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
	require.Empty(t, geo.calls, "empty query must not be dispatched")
}

func TestGetWeatherNilSnapshot(t *testing.T) {
	_, err := New(&stubGeocoder{}, &stubSource{}).GetWeather(context.Background(), "Oslo")
	require.Error(t, err)
}
