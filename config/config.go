package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"weather-dashboard/models"
)

// Значения, зашитые при сборке:
//
//	go build -ldflags "-X weather-dashboard/config.buildAPIKey=..."
var (
	buildProvider       string
	buildAPIKey         string
	buildGeocodingURL   string
	buildWeatherURL     string
	buildOpenWeatherURL string
	buildWeatherAPIURL  string
	buildDeploymentURL  string
)

const (
	ProviderOpenMeteo   = "open-meteo"
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"
)

// Config итоговая конфигурация. Собирается один раз при старте и дальше
// передается по значению.
type Config struct {
	Provider       string
	APIKey         string
	GeocodingURL   string
	WeatherURL     string
	OpenWeatherURL string
	WeatherAPIURL  string
	ServerPort     string
	HTTPTimeout    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	ForecastDays   int
	HourlyPoints   int
	DefaultUnits   models.Unit
	Language       string
	SessionTTL     time.Duration
	DeploymentURL  string

	origins map[string]string
}

// Origin возвращает имя источника, из которого взят ключ ("default" если ниоткуда)
func (c Config) Origin(key string) string {
	if o, ok := c.origins[key]; ok {
		return o
	}
	return "default"
}

// RequiresAPIKey нужен ли выбранному провайдеру ключ
func (c Config) RequiresAPIKey() bool {
	return c.Provider == ProviderOpenWeather || c.Provider == ProviderWeatherAPI
}

// Load собирает конфигурацию в стандартном порядке:
// окружение процесса, файл .env, значения сборки, значения по умолчанию.
func Load() Config {
	return Resolve(EnvSource{}, NewDotenvSource(".env"), BuildSource())
}

// Resolve читает каждый ключ из источников по порядку, побеждает первое
// непустое значение.
func Resolve(sources ...Source) Config {
	r := &resolver{sources: sources, origins: make(map[string]string)}

	cfg := Config{
		Provider:       strings.ToLower(r.str("WEATHER_PROVIDER", ProviderOpenMeteo)),
		APIKey:         r.str("WEATHER_API_KEY", "", "OPENWEATHER_API_KEY"),
		GeocodingURL:   strings.TrimRight(r.str("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1"), "/"),
		WeatherURL:     strings.TrimRight(r.str("WEATHER_URL", "https://api.open-meteo.com/v1"), "/"),
		OpenWeatherURL: strings.TrimRight(r.str("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5"), "/"),
		WeatherAPIURL:  strings.TrimRight(r.str("WEATHERAPI_URL", "https://api.weatherapi.com/v1"), "/"),
		ServerPort:     r.str("SERVER_PORT", "8080"),
		HTTPTimeout:    time.Duration(r.int("HTTP_TIMEOUT", 10, 1)) * time.Second,
		RateLimitRPS:   r.float("RATE_LIMIT_RPS", 5),
		RateLimitBurst: r.int("RATE_LIMIT_BURST", 5, 1),
		ForecastDays:   r.int("FORECAST_DAYS", 5, 1),
		HourlyPoints:   r.int("HOURLY_POINTS", 24, 0),
		Language:       r.str("LANGUAGE", "en"),
		SessionTTL:     time.Duration(r.int("SESSION_TTL", 30, 0)) * time.Minute,
		DeploymentURL:  r.str("DEPLOYMENT_URL", ""),
		origins:        r.origins,
	}

	units, err := models.ParseUnit(r.str("DEFAULT_UNITS", string(models.Metric)))
	if err != nil {
		log.Printf("warning: DEFAULT_UNITS: %v, используется metric", err)
		units = models.Metric
	}
	cfg.DefaultUnits = units

	switch cfg.Provider {
	case ProviderOpenMeteo, ProviderOpenWeather, ProviderWeatherAPI:
	default:
		log.Printf("warning: неизвестный провайдер %q, используется %s", cfg.Provider, ProviderOpenMeteo)
		cfg.Provider = ProviderOpenMeteo
	}

	// Ключ не проверяется: без него запросы упадут на сетевом уровне.
	if cfg.RequiresAPIKey() && cfg.APIKey == "" {
		log.Printf("warning: WEATHER_API_KEY не задан, запросы к %s вернут ошибку", cfg.Provider)
	}

	return cfg
}

type resolver struct {
	sources []Source
	origins map[string]string
}

// str ищет key, затем алиасы, в каждом источнике по порядку
func (r *resolver) str(key, defaultValue string, aliases ...string) string {
	keys := append([]string{key}, aliases...)
	for _, src := range r.sources {
		for _, k := range keys {
			if value, ok := src.Lookup(k); ok {
				r.origins[key] = src.Name()
				return strings.TrimSpace(value)
			}
		}
	}
	return defaultValue
}

// int целое не меньше minValue, иначе предупреждение и значение по умолчанию
func (r *resolver) int(key string, defaultValue, minValue int) int {
	value := r.str(key, "")
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil || intValue < minValue {
		log.Printf("warning: %s=%q не число >= %d, используется %d", key, value, minValue, defaultValue)
		delete(r.origins, key)
		return defaultValue
	}
	return intValue
}

func (r *resolver) float(key string, defaultValue float64) float64 {
	value := r.str(key, "")
	if value == "" {
		return defaultValue
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		log.Printf("warning: %s=%q не число, используется %v", key, value, defaultValue)
		delete(r.origins, key)
		return defaultValue
	}
	return f
}

// Source источник значений конфигурации
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// EnvSource окружение процесса, значения подставленные при запуске
type EnvSource struct{}

func (EnvSource) Name() string { return "env" }

func (EnvSource) Lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	return value, ok && value != ""
}

// MapSource фиксированный набор значений
type MapSource struct {
	name   string
	values map[string]string
}

func NewMapSource(name string, values map[string]string) MapSource {
	return MapSource{name: name, values: values}
}

func (m MapSource) Name() string { return m.name }

func (m MapSource) Lookup(key string) (string, bool) {
	value, ok := m.values[key]
	return value, ok && value != ""
}

// NewDotenvSource читает .env файл не трогая окружение процесса.
// Отсутствующий файл дает пустой источник.
func NewDotenvSource(path string) MapSource {
	values, err := godotenv.Read(path)
	if err != nil {
		values = map[string]string{}
	}
	return NewMapSource("dotenv", values)
}

// BuildSource значения, зашитые через -ldflags
func BuildSource() MapSource {
	return NewMapSource("build", map[string]string{
		"WEATHER_PROVIDER": buildProvider,
		"WEATHER_API_KEY":  buildAPIKey,
		"GEOCODING_URL":    buildGeocodingURL,
		"WEATHER_URL":      buildWeatherURL,
		"OPENWEATHER_URL":  buildOpenWeatherURL,
		"WEATHERAPI_URL":   buildWeatherAPIURL,
		"DEPLOYMENT_URL":   buildDeploymentURL,
	})
}
