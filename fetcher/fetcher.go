package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weather-dashboard/models"
	"weather-dashboard/obs"
	"weather-dashboard/providers"
)

// ErrEmptyQuery пустой запрос не отправляется
var ErrEmptyQuery = errors.New("не указан город")

// Fetcher выполняет один цикл запроса: геокодинг, затем погода по
// полученным координатам. Шаги строго последовательны.
type Fetcher struct {
	geocoder providers.Geocoder
	source   providers.WeatherSource
	now      func() time.Time
}

// New создает цикл с отдельными геокодером и источником погоды
func New(geocoder providers.Geocoder, source providers.WeatherSource) *Fetcher {
	return &Fetcher{
		geocoder: geocoder,
		source:   source,
		now:      time.Now,
	}
}

// NewFromProvider провайдер, умеющий и геокодинг, и погоду
func NewFromProvider(p providers.Provider) *Fetcher {
	return New(p, p)
}

// GetWeather ищет город и получает по нему погоду
func (f *Fetcher) GetWeather(ctx context.Context, city string) (_ *models.WeatherSnapshot, err error) {
	defer obs.Time(ctx, "fetch.cycle")(&err)

	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyQuery
	}

	loc, err := f.resolveLocation(ctx, city)
	if err != nil {
		return nil, err
	}

	snap, err := f.resolveWeather(ctx, loc)
	if err != nil {
		return nil, err
	}

	// снимок всегда относится к найденной локации
	snap.Location = mergeLocation(loc, snap.Location)
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = f.now()
	}
	return snap, nil
}

func (f *Fetcher) resolveLocation(ctx context.Context, city string) (_ models.Location, err error) {
	defer obs.Time(ctx, "fetch.geocode")(&err)

	loc, err := f.geocoder.Geocode(ctx, city)
	if err != nil {
		return models.Location{}, fmt.Errorf("геокодинг %q: %w", city, err)
	}
	return loc, nil
}

func (f *Fetcher) resolveWeather(ctx context.Context, loc models.Location) (_ *models.WeatherSnapshot, err error) {
	defer obs.Time(ctx, "fetch.weather")(&err)

	snap, err := f.source.GetWeather(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.source.Name(), err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%s: пустой ответ", f.source.Name())
	}
	return snap, nil
}

// mergeLocation берет данные геокодера, часовой пояс может прийти от источника погоды
func mergeLocation(geo, fromSource models.Location) models.Location {
	if geo.Timezone == "" {
		geo.Timezone = fromSource.Timezone
	}
	return geo
}

// SourceName имя источника погоды
func (f *Fetcher) SourceName() string {
	return f.source.Name()
}

// IsAvailable настроен ли источник
func (f *Fetcher) IsAvailable() bool {
	return f.source.IsAvailable()
}
