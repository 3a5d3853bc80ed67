package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"weather-dashboard/config"
	"weather-dashboard/fetcher"
	"weather-dashboard/models"
	"weather-dashboard/providers"
	"weather-dashboard/server"
	"weather-dashboard/viewmodel"
)

var (
	cfg config.Config
	wf  *fetcher.Fetcher
)

func main() {
	// Загружаем конфигурацию
	cfg = config.Load()

	// Провайдер и цепочка геокодинг -> погода
	wf = fetcher.NewFromProvider(newProvider(cfg))
	if wf.IsAvailable() {
		log.Printf("Провайдер %s подключен", wf.SourceName())
	} else {
		log.Printf("warning: провайдер %s не настроен", wf.SourceName())
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newProvider собирает провайдер по конфигурации и оборачивает его ограничителем частоты
func newProvider(c config.Config) providers.Provider {
	opts := providers.Options{
		Client:       &http.Client{Timeout: c.HTTPTimeout},
		Language:     c.Language,
		ForecastDays: c.ForecastDays,
		HourlyPoints: c.HourlyPoints,
	}

	var p providers.Provider
	switch c.Provider {
	case config.ProviderOpenWeather:
		p = providers.NewOpenWeatherProvider(c.APIKey, c.OpenWeatherURL, opts)
	case config.ProviderWeatherAPI:
		p = providers.NewWeatherAPIProvider(c.APIKey, c.WeatherAPIURL, opts)
	default:
		p = providers.NewOpenMeteoProvider(c.GeocodingURL, c.WeatherURL, opts)
	}

	return providers.NewRateLimitedProvider(p, c.RateLimitRPS, c.RateLimitBurst)
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "weather",
		Short: "Погодная панель",
		Long:  "Ищет город, получает текущую погоду и прогноз и показывает их в браузере или терминале",
		// ошибку печатает main
		SilenceErrors: true,
	}

	// Команда для запуска сервера
	var serveCmd = &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Запуск HTTP сервера с панелью погоды",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return startServer(cmd.Context())
		},
	}

	// Команда для запроса погоды через CLI
	var getCmd = &cobra.Command{
		Use:   "get [город]",
		Short: "Получить погоду для города",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// аргументы уже проверены, дальше usage не нужен
			cmd.SilenceUsage = true

			units, _ := cmd.Flags().GetString("units")
			output, _ := cmd.Flags().GetString("output")

			return getWeatherCLI(cmd.Context(), cmd.OutOrStdout(), wf, strings.Join(args, " "), units, output)
		},
	}

	getCmd.Flags().StringP("units", "u", "", "Единицы (metric, imperial)")
	getCmd.Flags().StringP("output", "o", "text", "Формат вывода (text, json)")

	// Команда для проверки провайдеров
	var providersCmd = &cobra.Command{
		Use:   "providers",
		Short: "Показать список провайдеров погоды",
		Run: func(cmd *cobra.Command, args []string) {
			showProviders(cmd.OutOrStdout(), cfg)
		},
	}

	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Показать итоговую конфигурацию и источники значений",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout(), cfg)
		},
	}

	var schemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "JSON Schema ответа /api/state и /api/weather",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return printSchema(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(serveCmd, getCmd, providersCmd, configCmd, schemaCmd)
	return rootCmd
}

// startServer запускает HTTP сервер до SIGINT/SIGTERM
func startServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(wf, server.Options{
		DefaultUnits:   cfg.DefaultUnits,
		SessionTTL:     cfg.SessionTTL,
		RequestTimeout: cfg.HTTPTimeout + 5*time.Second,
		SourceName:     wf.SourceName(),
		DeploymentURL:  cfg.DeploymentURL,
	})

	if err := srv.Run(ctx, ":"+cfg.ServerPort); err != nil {
		return fmt.Errorf("ошибка сервера: %w", err)
	}
	return nil
}

// getWeatherCLI один цикл поиска через view-model
func getWeatherCLI(parent context.Context, w io.Writer, f viewmodel.Fetcher, city, units, output string) error {
	unit := cfg.DefaultUnits
	if units != "" {
		parsed, err := models.ParseUnit(units)
		if err != nil {
			return err
		}
		unit = parsed
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithTimeout(parent, cfg.HTTPTimeout+5*time.Second)
	defer cancel()

	state := viewmodel.New(f, unit).Submit(ctx, city)
	display := viewmodel.Render(state)

	if output == "json" {
		data, err := json.MarshalIndent(display, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	} else {
		printWeather(w, display)
	}

	if state.Phase == viewmodel.Failed {
		return fmt.Errorf("%s", state.Error)
	}
	return nil
}

// printWeather текстовый вывод
func printWeather(w io.Writer, d viewmodel.Display) {
	if d.Weather == nil {
		if d.Error != "" {
			fmt.Fprintf(w, "⚠️  %s\n", d.Error)
		}
		return
	}

	weather := d.Weather
	fmt.Fprintf(w, "🌤️  Погода в %s\n", weather.Location)
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Температура: %d%s (мин: %d%s, макс: %d%s)\n",
		weather.Temperature, d.UnitSymbol, weather.TempMin, d.UnitSymbol, weather.TempMax, d.UnitSymbol)
	fmt.Fprintf(w, "Ощущается как: %d%s\n", weather.FeelsLike, d.UnitSymbol)
	fmt.Fprintf(w, "Описание: %s\n", weather.Description)
	fmt.Fprintf(w, "Влажность: %d%%\n", weather.Humidity)
	fmt.Fprintf(w, "Давление: %d hPa\n", weather.Pressure)
	fmt.Fprintf(w, "Ветер: %d м/с %s\n", weather.WindSpeed, weather.WindCompass)
	if weather.Visibility != "" {
		fmt.Fprintf(w, "Видимость: %s\n", weather.Visibility)
	}
	if weather.Sunrise != "" || weather.Sunset != "" {
		fmt.Fprintf(w, "Восход / закат: %s / %s\n", weather.Sunrise, weather.Sunset)
	}

	if len(weather.Forecast) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Прогноз:")
		for _, day := range weather.Forecast {
			fmt.Fprintf(w, "  %s %-6s %4d%s / %d%s  %s\n",
				day.Day, day.Date, day.TempMax, d.UnitSymbol, day.TempMin, d.UnitSymbol, day.Description)
		}
	}

	if len(weather.Hourly) > 0 {
		hours := make([]string, 0, len(weather.Hourly))
		for _, h := range weather.Hourly {
			hours = append(hours, fmt.Sprintf("%s %d%s", h.Time, h.Temperature, d.UnitSymbol))
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "По часам: %s\n", strings.Join(hours, ", "))
	}

	fmt.Fprintf(w, "\nИсточник: %s\n", weather.Provider)
	fmt.Fprintf(w, "Обновлено: %s\n", d.LastUpdated)
}

// showProviders показывает список провайдеров и какой из них выбран
func showProviders(w io.Writer, c config.Config) {
	fmt.Fprintln(w, "📡 Провайдеры погоды:")
	fmt.Fprintln(w, strings.Repeat("-", 30))

	for _, p := range []struct {
		id, name string
		needsKey bool
	}{
		{config.ProviderOpenMeteo, "Open-Meteo", false},
		{config.ProviderOpenWeather, "OpenWeatherMap", true},
		{config.ProviderWeatherAPI, "WeatherAPI", true},
	} {
		mark, note := "✗", ""
		if p.id == c.Provider {
			mark, note = "✓", " (выбран)"
		}
		if p.needsKey && c.APIKey == "" {
			note += " (нужен WEATHER_API_KEY)"
		}
		fmt.Fprintf(w, "%s %s%s\n", mark, p.name, note)
	}
}

// showConfig печатает значения и откуда они взяты. Ключ маскируется.
func showConfig(w io.Writer, c config.Config) {
	key := "(не задан)"
	if c.APIKey != "" {
		key = maskKey(c.APIKey)
	}

	rows := []struct {
		key, value string
	}{
		{"WEATHER_PROVIDER", c.Provider},
		{"WEATHER_API_KEY", key},
		{"GEOCODING_URL", c.GeocodingURL},
		{"WEATHER_URL", c.WeatherURL},
		{"OPENWEATHER_URL", c.OpenWeatherURL},
		{"WEATHERAPI_URL", c.WeatherAPIURL},
		{"SERVER_PORT", c.ServerPort},
		{"HTTP_TIMEOUT", c.HTTPTimeout.String()},
		{"RATE_LIMIT_RPS", fmt.Sprint(c.RateLimitRPS)},
		{"RATE_LIMIT_BURST", fmt.Sprint(c.RateLimitBurst)},
		{"FORECAST_DAYS", fmt.Sprint(c.ForecastDays)},
		{"HOURLY_POINTS", fmt.Sprint(c.HourlyPoints)},
		{"DEFAULT_UNITS", string(c.DefaultUnits)},
		{"LANGUAGE", c.Language},
		{"SESSION_TTL", c.SessionTTL.String()},
		{"DEPLOYMENT_URL", c.DeploymentURL},
	}

	for _, row := range rows {
		fmt.Fprintf(w, "%-18s %-45s [%s]\n", row.key, row.value, c.Origin(row.key))
	}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:2] + strings.Repeat("*", len(key)-4) + key[len(key)-2:]
}

// printSchema JSON Schema проекции состояния
func printSchema(w io.Writer) error {
	schema := jsonschema.Reflect(&viewmodel.Display{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
