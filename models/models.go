package models

import (
	"slices"
	"strings"
	"time"
)

// Location результат геокодирования города
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Region    string  `json:"region,omitempty"` // admin1, может отсутствовать
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

// DisplayName возвращает "Город, Регион, Страна" без пустых частей
func (l Location) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Name, l.Region, l.Country} {
		if p != "" && !slices.Contains(parts, p) {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// WeatherSnapshot содержит все данные одного успешного цикла запроса.
// Температуры всегда в градусах Цельсия, скорость ветра в м/с, давление в hPa.
type WeatherSnapshot struct {
	Provider      string          `json:"provider"`
	Location      Location        `json:"location"`
	Temperature   int             `json:"temperature"`
	FeelsLike     int             `json:"feels_like"`
	TempMin       int             `json:"temp_min"`
	TempMax       int             `json:"temp_max"`
	Humidity      int             `json:"humidity"`       // влажность %
	WindSpeed     int             `json:"wind_speed"`     // м/с
	WindDirection int             `json:"wind_direction"` // градусы
	Pressure      int             `json:"pressure"`
	Visibility    *int            `json:"visibility,omitempty"` // метры
	Description   string          `json:"description"`
	Icon          string          `json:"icon"`
	Sunrise       int64           `json:"sunrise"` // unix секунды
	Sunset        int64           `json:"sunset"`
	UTCOffset     int             `json:"utc_offset"` // смещение локального времени, секунды
	Forecast      []ForecastEntry `json:"forecast,omitempty"`
	Hourly        []HourlyPoint   `json:"hourly,omitempty"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// Zone часовой пояс локации снимка
func (s *WeatherSnapshot) Zone() *time.Location {
	return time.FixedZone(s.Location.Timezone, s.UTCOffset)
}

// ForecastEntry прогноз на один день
type ForecastEntry struct {
	Date        time.Time `json:"date"`
	TempMin     int       `json:"temp_min"`
	TempMax     int       `json:"temp_max"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// HourlyPoint точка почасового графика
type HourlyPoint struct {
	Time        time.Time `json:"time"`
	Temperature int       `json:"temperature"`
}

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
