package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/models"
)

type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	opts    Options
}

func NewOpenWeatherProvider(apiKey, baseURL string, opts Options) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts.withDefaults(),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return "OpenWeatherMap"
}

func (p *OpenWeatherProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// query базовые параметры. Пустой ключ уходит как есть, ответ 401 вернет провайдер.
func (p *OpenWeatherProvider) query() url.Values {
	query := url.Values{}
	query.Set("appid", p.apiKey)
	query.Set("units", "metric") // метрическая система
	query.Set("lang", p.opts.Language)
	return query
}

type owCurrent struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Visibility *float64 `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []owCondition `json:"weather"`
	Sys     struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

type owCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owSlot struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []owCondition `json:"weather"`
}

type owForecast struct {
	List []owSlot `json:"list"`
}

// Geocode в варианте с одним провайдером город ищется запросом /weather?q=
func (p *OpenWeatherProvider) Geocode(ctx context.Context, city string) (models.Location, error) {
	query := p.query()
	query.Set("q", city)

	var result owCurrent
	if err := getJSON(ctx, p.opts.Client, OpGeocode, p.baseURL+"/weather", query, &result); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return models.Location{}, ErrCityNotFound
		}
		return models.Location{}, err
	}

	return models.Location{
		Name:      result.Name,
		Country:   result.Sys.Country,
		Latitude:  result.Coord.Lat,
		Longitude: result.Coord.Lon,
	}, nil
}

// GetWeather текущая погода и прогноз по координатам, запросы идут по очереди
func (p *OpenWeatherProvider) GetWeather(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	query := p.query()
	query.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))

	var current owCurrent
	if err := getJSON(ctx, p.opts.Client, OpWeather, p.baseURL+"/weather", query, &current); err != nil {
		return nil, err
	}

	var forecast owForecast
	if err := getJSON(ctx, p.opts.Client, OpWeather, p.baseURL+"/forecast", query, &forecast); err != nil {
		return nil, err
	}

	return p.toSnapshot(&current, &forecast, loc, p.opts.Now())
}

func (p *OpenWeatherProvider) toSnapshot(c *owCurrent, f *owForecast, loc models.Location, now time.Time) (*models.WeatherSnapshot, error) {
	if len(c.Weather) == 0 {
		return nil, fmt.Errorf("нет данных о погоде")
	}

	snap := &models.WeatherSnapshot{
		Provider:      p.Name(),
		Location:      loc,
		Temperature:   models.Round(c.Main.Temp),
		FeelsLike:     models.Round(c.Main.FeelsLike),
		TempMin:       models.Round(c.Main.TempMin),
		TempMax:       models.Round(c.Main.TempMax),
		Humidity:      models.Round(c.Main.Humidity),
		WindSpeed:     models.Round(c.Wind.Speed),
		WindDirection: models.Round(c.Wind.Deg),
		Pressure:      models.Round(c.Main.Pressure),
		Description:   c.Weather[0].Description,
		Icon:          c.Weather[0].Icon,
		Sunrise:       c.Sys.Sunrise,
		Sunset:        c.Sys.Sunset,
		UTCOffset:     c.Timezone,
		FetchedAt:     now,
	}

	if c.Visibility != nil {
		v := models.Round(*c.Visibility)
		snap.Visibility = &v
	}

	zone := snap.Zone()
	snap.Forecast = dailyFromSlots(f.List, zone, now, p.opts.ForecastDays)

	points := make([]models.HourlyPoint, 0, len(f.List))
	for _, s := range f.List {
		points = append(points, models.HourlyPoint{
			Time:        time.Unix(s.Dt, 0).In(zone),
			Temperature: models.Round(s.Main.Temp),
		})
	}
	snap.Hourly = upcomingHours(points, now, p.opts.HourlyPoints)

	return snap, nil
}

// dailyFromSlots сворачивает трехчасовые слоты в один прогноз на день.
// Мин/макс считаются по всем слотам дня, описание берется из слота ближе
// всего к полудню. Сегодняшний день пропускается, если есть следующие.
func dailyFromSlots(slots []owSlot, zone *time.Location, now time.Time, days int) []models.ForecastEntry {
	type day struct {
		entry    models.ForecastEntry
		noonDist int
	}

	var order []string
	byDate := make(map[string]*day)

	for _, s := range slots {
		t := time.Unix(s.Dt, 0).In(zone)
		key := t.Format("2006-01-02")

		dist := t.Hour()*60 + t.Minute() - 12*60
		if dist < 0 {
			dist = -dist
		}

		d, ok := byDate[key]
		if !ok {
			y, m, dd := t.Date()
			d = &day{
				entry: models.ForecastEntry{
					Date:    time.Date(y, m, dd, 0, 0, 0, 0, zone),
					TempMin: models.Round(s.Main.TempMin),
					TempMax: models.Round(s.Main.TempMax),
				},
				noonDist: -1,
			}
			byDate[key] = d
			order = append(order, key)
		}

		d.entry.TempMin = min(d.entry.TempMin, models.Round(s.Main.TempMin))
		d.entry.TempMax = max(d.entry.TempMax, models.Round(s.Main.TempMax))

		if len(s.Weather) > 0 && (d.noonDist < 0 || dist < d.noonDist) {
			d.noonDist = dist
			d.entry.Description = s.Weather[0].Description
			d.entry.Icon = s.Weather[0].Icon
		}
	}

	today := now.In(zone).Format("2006-01-02")
	if len(order) > 1 && order[0] == today {
		order = order[1:]
	}

	out := make([]models.ForecastEntry, 0, len(order))
	for _, key := range order {
		if days > 0 && len(out) == days {
			break
		}
		out = append(out, byDate[key].entry)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var _ Provider = (*OpenWeatherProvider)(nil)
