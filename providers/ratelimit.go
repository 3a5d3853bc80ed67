package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"weather-dashboard/models"
)

// RateLimitedProvider ограничивает частоту запросов к провайдеру.
// Геокодинг и погода лимитируются раздельно. Повторов нет: ошибка
// провайдера возвращается как есть.
type RateLimitedProvider struct {
	provider       Provider
	geocodeLimiter *rate.Limiter
	weatherLimiter *rate.Limiter
	name           string
}

// NewRateLimitedProvider rps запросов в секунду (может быть дробным), burst размер всплеска
func NewRateLimitedProvider(provider Provider, rps float64, burst int) *RateLimitedProvider {
	// при burst 0 Wait всегда возвращает ошибку
	burst = max(burst, 1)

	return &RateLimitedProvider{
		provider:       provider,
		geocodeLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		weatherLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:           fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

func (r *RateLimitedProvider) Geocode(ctx context.Context, city string) (models.Location, error) {
	if err := r.geocodeLimiter.Wait(ctx); err != nil {
		return models.Location{}, fmt.Errorf("ожидание лимита прервано: %w", err)
	}
	return r.provider.Geocode(ctx, city)
}

func (r *RateLimitedProvider) GetWeather(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	if err := r.weatherLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ожидание лимита прервано: %w", err)
	}
	return r.provider.GetWeather(ctx, loc)
}

func (r *RateLimitedProvider) Name() string {
	return r.name
}

func (r *RateLimitedProvider) IsAvailable() bool {
	return r.provider.IsAvailable()
}

var _ Provider = (*RateLimitedProvider)(nil)
