package viewmodel

import (
	"fmt"
	"strings"

	"weather-dashboard/models"
)

// Display данные для отрисовки экрана. Температуры уже в выбранных единицах.
type Display struct {
	Phase       Phase        `json:"phase"`
	Query       string       `json:"query,omitempty"`
	Error       string       `json:"error,omitempty"`
	Unit        models.Unit  `json:"unit"`
	UnitSymbol  string       `json:"unit_symbol"`
	LastUpdated string       `json:"last_updated,omitempty"`
	Generation  uint64       `json:"generation"`
	Weather     *WeatherView `json:"weather,omitempty"`
}

// Loading идет ли запрос
func (d Display) Loading() bool { return d.Phase == Loading }

type WeatherView struct {
	Location      string         `json:"location"`
	Provider      string         `json:"provider"`
	Temperature   int            `json:"temperature"`
	FeelsLike     int            `json:"feels_like"`
	TempMin       int            `json:"temp_min"`
	TempMax       int            `json:"temp_max"`
	Humidity      int            `json:"humidity"`
	WindSpeed     int            `json:"wind_speed"`
	WindDirection int            `json:"wind_direction"`
	WindCompass   string         `json:"wind_compass"`
	Pressure      int            `json:"pressure"`
	Visibility    string         `json:"visibility,omitempty"`
	Description   string         `json:"description"`
	Icon          string         `json:"icon"`
	Sunrise       string         `json:"sunrise"`
	Sunset        string         `json:"sunset"`
	Forecast      []ForecastView `json:"forecast,omitempty"`
	Hourly        []HourlyView   `json:"hourly,omitempty"`
	Trend         string         `json:"trend,omitempty"` // точки polyline для графика
}

type ForecastView struct {
	Day         string `json:"day"`
	Date        string `json:"date"`
	TempMin     int    `json:"temp_min"`
	TempMax     int    `json:"temp_max"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type HourlyView struct {
	Time        string `json:"time"`
	Temperature int    `json:"temperature"`
}

// Размер области графика
const (
	TrendWidth  = 480
	TrendHeight = 120
)

// Render строит проекцию состояния. Перевод в Фаренгейты только здесь.
func Render(s State) Display {
	unit := s.Unit
	if unit == "" {
		unit = models.Metric
	}

	d := Display{
		Phase:      s.Phase,
		Query:      s.Query,
		Error:      s.Error,
		Unit:       unit,
		UnitSymbol: unit.Symbol(),
		Generation: s.Generation,
	}
	if !s.LastUpdated.IsZero() {
		d.LastUpdated = s.LastUpdated.Format("15:04:05")
	}
	if s.Snapshot != nil {
		d.Weather = renderWeather(s.Snapshot, unit)
	}
	return d
}

func renderWeather(snap *models.WeatherSnapshot, unit models.Unit) *WeatherView {
	zone := snap.Zone()

	w := &WeatherView{
		Location:      snap.Location.DisplayName(),
		Provider:      snap.Provider,
		Temperature:   unit.Temperature(snap.Temperature),
		FeelsLike:     unit.Temperature(snap.FeelsLike),
		TempMin:       unit.Temperature(snap.TempMin),
		TempMax:       unit.Temperature(snap.TempMax),
		Humidity:      snap.Humidity,
		WindSpeed:     snap.WindSpeed,
		WindDirection: snap.WindDirection,
		WindCompass:   compass(snap.WindDirection),
		Pressure:      snap.Pressure,
		Description:   snap.Description,
		Icon:          snap.Icon,
		Sunrise:       models.FormatClock(snap.Sunrise, zone),
		Sunset:        models.FormatClock(snap.Sunset, zone),
	}

	if snap.Visibility != nil {
		w.Visibility = fmt.Sprintf("%.1f km", float64(*snap.Visibility)/1000)
	}

	for _, f := range snap.Forecast {
		w.Forecast = append(w.Forecast, ForecastView{
			Day:         f.Date.Format("Mon"),
			Date:        f.Date.Format("Jan 2"),
			TempMin:     unit.Temperature(f.TempMin),
			TempMax:     unit.Temperature(f.TempMax),
			Description: f.Description,
			Icon:        f.Icon,
		})
	}

	for _, h := range snap.Hourly {
		w.Hourly = append(w.Hourly, HourlyView{
			Time:        h.Time.In(zone).Format("15:04"),
			Temperature: unit.Temperature(h.Temperature),
		})
	}
	w.Trend = trendPoints(w.Hourly, TrendWidth, TrendHeight)

	return w
}

var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func compass(deg int) string {
	deg = ((deg % 360) + 360) % 360
	return compassPoints[((deg*2+45)/90)%8]
}

// trendPoints координаты polyline "x,y x,y ..." в области width x height
func trendPoints(hours []HourlyView, width, height int) string {
	if len(hours) < 2 {
		return ""
	}

	lo, hi := hours[0].Temperature, hours[0].Temperature
	for _, h := range hours {
		lo = min(lo, h.Temperature)
		hi = max(hi, h.Temperature)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := float64(width) / float64(len(hours)-1)
	points := make([]string, 0, len(hours))
	for i, h := range hours {
		x := float64(i) * step
		y := float64(height) - float64(h.Temperature-lo)/float64(span)*float64(height)
		points = append(points, fmt.Sprintf("%.0f,%.0f", x, y))
	}
	return strings.Join(points, " ")
}
