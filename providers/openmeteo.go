package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/models"
)

// Open-Meteo отдает локальное время без смещения
const (
	openMeteoTimeLayout = "2006-01-02T15:04"
	openMeteoDateLayout = "2006-01-02"
)

// OpenMeteoProvider геокодинг и прогноз Open-Meteo, ключ не нужен
type OpenMeteoProvider struct {
	geocodingURL string
	baseURL      string
	opts         Options
}

func NewOpenMeteoProvider(geocodingURL, baseURL string, opts Options) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		geocodingURL: strings.TrimRight(geocodingURL, "/"),
		baseURL:      strings.TrimRight(baseURL, "/"),
		opts:         opts.withDefaults(),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return "Open-Meteo"
}

func (p *OpenMeteoProvider) IsAvailable() bool {
	return p.geocodingURL != "" && p.baseURL != ""
}

type openMeteoGeocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// Geocode ищет город, при нескольких совпадениях берется первое
func (p *OpenMeteoProvider) Geocode(ctx context.Context, city string) (models.Location, error) {
	query := url.Values{}
	query.Set("name", city)
	query.Set("count", "1")
	query.Set("language", p.opts.Language)
	query.Set("format", "json")

	var result openMeteoGeocodeResponse
	if err := getJSON(ctx, p.opts.Client, OpGeocode, p.geocodingURL+"/search", query, &result); err != nil {
		return models.Location{}, err
	}

	if len(result.Results) == 0 {
		return models.Location{}, ErrCityNotFound
	}

	r := result.Results[0]
	return models.Location{
		Name:      r.Name,
		Country:   r.Country,
		Region:    r.Admin1,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timezone:  r.Timezone,
	}, nil
}

type openMeteoForecast struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Current          struct {
		Temperature   float64  `json:"temperature_2m"`
		Humidity      float64  `json:"relative_humidity_2m"`
		FeelsLike     float64  `json:"apparent_temperature"`
		Pressure      float64  `json:"pressure_msl"`
		WindSpeed     float64  `json:"wind_speed_10m"`
		WindDirection float64  `json:"wind_direction_10m"`
		Visibility    *float64 `json:"visibility"`
	} `json:"current"`
	Daily struct {
		Time         []string  `json:"time"`
		TempMax      []float64 `json:"temperature_2m_max"`
		TempMin      []float64 `json:"temperature_2m_min"`
		Sunrise      []string  `json:"sunrise"`
		Sunset       []string  `json:"sunset"`
		HumidityMean []float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
	} `json:"hourly"`
}

// GetWeather запрашивает текущую погоду, дневной и почасовой прогноз
func (p *OpenMeteoProvider) GetWeather(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	query.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,pressure_msl,wind_speed_10m,wind_direction_10m,visibility")
	query.Set("daily", "temperature_2m_max,temperature_2m_min,sunrise,sunset,relative_humidity_2m_mean")
	query.Set("hourly", "temperature_2m")
	query.Set("timezone", "auto")
	query.Set("wind_speed_unit", "ms")
	query.Set("forecast_days", strconv.Itoa(p.opts.ForecastDays))

	var result openMeteoForecast
	if err := getJSON(ctx, p.opts.Client, OpWeather, p.baseURL+"/forecast", query, &result); err != nil {
		return nil, err
	}

	return p.toSnapshot(&result, loc, p.opts.Now())
}

// toSnapshot переносит ответ в снимок. Кода погоды в ответе нет, поэтому
// описание и иконка берутся из classify.
func (p *OpenMeteoProvider) toSnapshot(r *openMeteoForecast, loc models.Location, now time.Time) (*models.WeatherSnapshot, error) {
	if loc.Timezone == "" {
		loc.Timezone = r.Timezone
	}
	zone := time.FixedZone(loc.Timezone, r.UTCOffsetSeconds)

	temp := models.Round(r.Current.Temperature)
	humidity := models.Round(r.Current.Humidity)
	cond := classify(temp, humidity)

	snap := &models.WeatherSnapshot{
		Provider:      p.Name(),
		Location:      loc,
		Temperature:   temp,
		FeelsLike:     models.Round(r.Current.FeelsLike),
		TempMin:       temp,
		TempMax:       temp,
		Humidity:      humidity,
		WindSpeed:     models.Round(r.Current.WindSpeed),
		WindDirection: models.Round(r.Current.WindDirection),
		Pressure:      models.Round(r.Current.Pressure),
		Description:   cond.Description,
		Icon:          cond.Icon,
		UTCOffset:     r.UTCOffsetSeconds,
		FetchedAt:     now,
	}

	if r.Current.Visibility != nil {
		v := models.Round(*r.Current.Visibility)
		snap.Visibility = &v
	}

	daily := r.Daily
	for i, day := range daily.Time {
		date, err := time.ParseInLocation(openMeteoDateLayout, day, zone)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора даты %q: %w", day, err)
		}

		entry := models.ForecastEntry{
			Date:    date,
			TempMin: models.Round(at(daily.TempMin, i)),
			TempMax: models.Round(at(daily.TempMax, i)),
		}
		dayHumidity := humidity
		if i < len(daily.HumidityMean) {
			dayHumidity = models.Round(daily.HumidityMean[i])
		}
		c := classify(entry.TempMax, dayHumidity)
		entry.Description, entry.Icon = c.Description, c.Icon

		snap.Forecast = append(snap.Forecast, entry)
	}

	if len(snap.Forecast) > 0 {
		snap.TempMin = snap.Forecast[0].TempMin
		snap.TempMax = snap.Forecast[0].TempMax
	}

	var err error
	if snap.Sunrise, err = parseLocalUnix(daily.Sunrise, zone); err != nil {
		return nil, err
	}
	if snap.Sunset, err = parseLocalUnix(daily.Sunset, zone); err != nil {
		return nil, err
	}

	points := make([]models.HourlyPoint, 0, len(r.Hourly.Time))
	for i, ts := range r.Hourly.Time {
		t, err := time.ParseInLocation(openMeteoTimeLayout, ts, zone)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора времени %q: %w", ts, err)
		}
		points = append(points, models.HourlyPoint{
			Time:        t,
			Temperature: models.Round(at(r.Hourly.Temperature, i)),
		})
	}
	snap.Hourly = upcomingHours(points, now, p.opts.HourlyPoints)

	return snap, nil
}

// parseLocalUnix первое значение списка как unix секунды, 0 если список пуст
func parseLocalUnix(values []string, zone *time.Location) (int64, error) {
	if len(values) == 0 || values[0] == "" {
		return 0, nil
	}
	t, err := time.ParseInLocation(openMeteoTimeLayout, values[0], zone)
	if err != nil {
		return 0, fmt.Errorf("ошибка разбора времени %q: %w", values[0], err)
	}
	return t.Unix(), nil
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

var _ Provider = (*OpenMeteoProvider)(nil)
