package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // tz_id приходит именем IANA

	"weather-dashboard/models"
)

type WeatherAPIProvider struct {
	apiKey  string
	baseURL string
	opts    Options
}

func NewWeatherAPIProvider(apiKey, baseURL string, opts Options) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts.withDefaults(),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return "WeatherAPI"
}

func (p *WeatherAPIProvider) IsAvailable() bool {
	return p.apiKey != ""
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type weatherAPIForecast struct {
	Location struct {
		TzID string `json:"tz_id"`
	} `json:"location"`
	Current struct {
		TempC      float64             `json:"temp_c"`
		FeelsLikeC float64             `json:"feelslike_c"`
		Humidity   float64             `json:"humidity"`
		PressureMB float64             `json:"pressure_mb"`
		WindKph    float64             `json:"wind_kph"`
		WindDeg    float64             `json:"wind_degree"`
		VisKm      *float64            `json:"vis_km"`
		Condition  weatherAPICondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64             `json:"maxtemp_c"`
				MinTempC  float64             `json:"mintemp_c"`
				Condition weatherAPICondition `json:"condition"`
			} `json:"day"`
			Astro struct {
				Sunrise string `json:"sunrise"`
				Sunset  string `json:"sunset"`
			} `json:"astro"`
			Hour []struct {
				TimeEpoch int64   `json:"time_epoch"`
				TempC     float64 `json:"temp_c"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Geocode ищет город через /search.json
func (p *WeatherAPIProvider) Geocode(ctx context.Context, city string) (models.Location, error) {
	query := url.Values{}
	query.Set("key", p.apiKey)
	query.Set("q", city)

	var result []struct {
		Name    string  `json:"name"`
		Region  string  `json:"region"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := getJSON(ctx, p.opts.Client, OpGeocode, p.baseURL+"/search.json", query, &result); err != nil {
		return models.Location{}, err
	}

	if len(result) == 0 {
		return models.Location{}, ErrCityNotFound
	}

	r := result[0]
	return models.Location{
		Name:      r.Name,
		Country:   r.Country,
		Region:    r.Region,
		Latitude:  r.Lat,
		Longitude: r.Lon,
	}, nil
}

// GetWeather текущая погода и прогноз одним запросом /forecast.json
func (p *WeatherAPIProvider) GetWeather(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	query := url.Values{}
	query.Set("key", p.apiKey)
	query.Set("q", fmt.Sprintf("%s,%s",
		strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
		strconv.FormatFloat(loc.Longitude, 'f', -1, 64)))
	query.Set("days", strconv.Itoa(p.opts.ForecastDays))
	query.Set("lang", p.opts.Language)

	var result weatherAPIForecast
	if err := getJSON(ctx, p.opts.Client, OpWeather, p.baseURL+"/forecast.json", query, &result); err != nil {
		return nil, err
	}

	return p.toSnapshot(&result, loc, p.opts.Now())
}

func (p *WeatherAPIProvider) toSnapshot(r *weatherAPIForecast, loc models.Location, now time.Time) (*models.WeatherSnapshot, error) {
	zone := time.UTC
	if r.Location.TzID != "" {
		z, err := time.LoadLocation(r.Location.TzID)
		if err != nil {
			return nil, fmt.Errorf("неизвестный часовой пояс %q: %w", r.Location.TzID, err)
		}
		zone = z
	}
	if loc.Timezone == "" {
		loc.Timezone = r.Location.TzID
	}
	_, offset := now.In(zone).Zone()

	// Конвертируем скорость ветра из км/ч в м/с
	windSpeedMS := r.Current.WindKph / 3.6

	snap := &models.WeatherSnapshot{
		Provider:      p.Name(),
		Location:      loc,
		Temperature:   models.Round(r.Current.TempC),
		FeelsLike:     models.Round(r.Current.FeelsLikeC),
		TempMin:       models.Round(r.Current.TempC),
		TempMax:       models.Round(r.Current.TempC),
		Humidity:      models.Round(r.Current.Humidity),
		WindSpeed:     models.Round(windSpeedMS),
		WindDirection: models.Round(r.Current.WindDeg),
		Pressure:      models.Round(r.Current.PressureMB),
		Description:   r.Current.Condition.Text,
		Icon:          iconURL(r.Current.Condition.Icon),
		UTCOffset:     offset,
		FetchedAt:     now,
	}

	if r.Current.VisKm != nil {
		v := models.Round(*r.Current.VisKm * 1000)
		snap.Visibility = &v
	}

	var points []models.HourlyPoint
	for i, fd := range r.Forecast.ForecastDay {
		date, err := time.ParseInLocation("2006-01-02", fd.Date, zone)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора даты %q: %w", fd.Date, err)
		}

		snap.Forecast = append(snap.Forecast, models.ForecastEntry{
			Date:        date,
			TempMin:     models.Round(fd.Day.MinTempC),
			TempMax:     models.Round(fd.Day.MaxTempC),
			Description: fd.Day.Condition.Text,
			Icon:        iconURL(fd.Day.Condition.Icon),
		})

		if i == 0 {
			snap.TempMin = models.Round(fd.Day.MinTempC)
			snap.TempMax = models.Round(fd.Day.MaxTempC)
			if snap.Sunrise, err = parseClock(fd.Date, fd.Astro.Sunrise, zone); err != nil {
				return nil, err
			}
			if snap.Sunset, err = parseClock(fd.Date, fd.Astro.Sunset, zone); err != nil {
				return nil, err
			}
		}

		for _, h := range fd.Hour {
			points = append(points, models.HourlyPoint{
				Time:        time.Unix(h.TimeEpoch, 0).In(zone),
				Temperature: models.Round(h.TempC),
			})
		}
	}
	snap.Hourly = upcomingHours(points, now, p.opts.HourlyPoints)

	return snap, nil
}

// parseClock "06:45 AM" в дату прогноза
func parseClock(date, clock string, zone *time.Location) (int64, error) {
	if clock == "" {
		return 0, nil
	}
	t, err := time.ParseInLocation("2006-01-02 03:04 PM", date+" "+clock, zone)
	if err != nil {
		return 0, fmt.Errorf("ошибка разбора времени %q: %w", clock, err)
	}
	return t.Unix(), nil
}

// iconURL иконки приходят без схемы: //cdn.weatherapi.com/...
func iconURL(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

var _ Provider = (*WeatherAPIProvider)(nil)
