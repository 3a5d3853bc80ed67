package providers

import (
	"context"
	"net/http"
	"time"

	"weather-dashboard/models"
)

// Geocoder переводит название города в координаты
type Geocoder interface {
	Geocode(ctx context.Context, city string) (models.Location, error)
}

// WeatherSource получает погоду по координатам
type WeatherSource interface {
	Name() string
	GetWeather(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error)
	IsAvailable() bool
}

// Provider интерфейс для всех погодных провайдеров: геокодинг + погода
type Provider interface {
	Geocoder
	WeatherSource
}

// Options общие настройки провайдеров
type Options struct {
	Client       *http.Client
	Language     string
	ForecastDays int
	HourlyPoints int
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Client == nil {
		o.Client = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	if o.Language == "" {
		o.Language = "en"
	}
	if o.ForecastDays <= 0 {
		o.ForecastDays = 5
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
