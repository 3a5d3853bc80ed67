package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
	"weather-dashboard/providers"
	srvpkg "weather-dashboard/server"
	"weather-dashboard/viewmodel"
)

type stubFetcher struct{}

func (stubFetcher) GetWeather(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	switch city {
	case "Atlantis":
		return nil, providers.ErrCityNotFound
	case "Broken":
		return nil, &providers.StatusError{Op: providers.OpWeather, Code: 503}
	}

	now := time.Now()
	return &models.WeatherSnapshot{
		Provider:    "stub",
		Location:    models.Location{Name: city, Country: "Testland"},
		Temperature: 21,
		FeelsLike:   20,
		Humidity:    50,
		Description: "scattered clouds",
		Icon:        "03d",
		Hourly: []models.HourlyPoint{
			{Time: now.Add(time.Hour), Temperature: 21},
			{Time: now.Add(2 * time.Hour), Temperature: 23},
		},
	}, nil
}

type displayDoc struct {
	Phase      string `json:"phase"`
	Error      string `json:"error"`
	Unit       string `json:"unit"`
	Generation uint64 `json:"generation"`
	Weather    *struct {
		Location    string `json:"location"`
		Temperature int    `json:"temperature"`
	} `json:"weather"`
}

func newTestRouter() http.Handler {
	return srvpkg.New(stubFetcher{}, srvpkg.Options{
		DefaultUnits: models.Metric,
		SessionTTL:   time.Minute,
		SourceName:   "stub",
	}).Router()
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	ts := httptest.NewServer(newTestRouter())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := ts.Client()
	client.Jar = jar
	return ts, client
}

func decodeDisplay(t *testing.T, resp *http.Response) displayDoc {
	t.Helper()
	defer resp.Body.Close()

	var d displayDoc
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	return d
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestSessionSearchAndUnitToggle(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	require.Equal(t, "idle", decodeDisplay(t, resp).Phase)

	resp, err = client.Post(ts.URL+"/api/search", "application/json", strings.NewReader(`{"city":"Lisbon"}`))
	require.NoError(t, err)
	d := decodeDisplay(t, resp)
	require.Equal(t, "loaded", d.Phase)
	require.NotNil(t, d.Weather)
	require.Equal(t, 21, d.Weather.Temperature)
	require.Equal(t, uint64(1), d.Generation)

	resp, err = client.Post(ts.URL+"/api/unit", "application/json", strings.NewReader(`{"unit":"imperial"}`))
	require.NoError(t, err)
	d = decodeDisplay(t, resp)
	require.Equal(t, "imperial", d.Unit)
	require.Equal(t, 70, d.Weather.Temperature)

	// состояние привязано к сессии
	resp, err = client.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	d = decodeDisplay(t, resp)
	require.NotNil(t, d.Weather, "session state lost")
	require.Equal(t, "Lisbon, Testland", d.Weather.Location)

	// другой клиент без cookie видит свое состояние
	resp, err = http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	require.Equal(t, "idle", decodeDisplay(t, resp).Phase, "sessions are shared")
}

func TestUnitEmptyBodyToggles(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Post(ts.URL+"/api/unit", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "imperial", decodeDisplay(t, resp).Unit)
}

func TestUnitChunkedEmptyBodyToggles(t *testing.T) {
	router := newTestRouter()

	// тело неизвестной длины, как у chunked запроса
	req := httptest.NewRequest(http.MethodPost, "/api/unit", strings.NewReader(""))
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "imperial", decodeDisplay(t, rec.Result()).Unit)
}

func TestUnitRejectsUnknownValue(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Post(ts.URL+"/api/unit", "application/json", strings.NewReader(`{"unit":"kelvin"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchFailureClearsSnapshot(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Post(ts.URL+"/api/search", "application/json", strings.NewReader(`{"city":"Lisbon"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Post(ts.URL+"/api/search", "application/json", strings.NewReader(`{"city":"Broken"}`))
	require.NoError(t, err)

	d := decodeDisplay(t, resp)
	require.Equal(t, "failed", d.Phase)
	require.Nil(t, d.Weather)
	require.Equal(t, "Failed to fetch weather data (503)", d.Error)
}

func TestFormSearchRendersDashboard(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.PostForm(ts.URL+"/search", url.Values{"city": {"Atlantis"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), viewmodel.MsgCityNotFound)

	resp, err = client.PostForm(ts.URL+"/search", url.Values{"city": {"Lisbon"}})
	require.NoError(t, err)

	body := readBody(t, resp)
	require.Contains(t, body, "Lisbon, Testland")
	require.Contains(t, body, "21°C")
}

func TestTrendViewBoxCoversWholeLine(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.PostForm(ts.URL+"/search", url.Values{"city": {"Lisbon"}})
	require.NoError(t, err)

	body := readBody(t, resp)
	require.Contains(t, body, "<polyline")
	require.Contains(t, body, `viewBox="-4 -4 488 128"`)
}

func TestStatelessWeatherEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	cases := []struct {
		query  string
		status int
	}{
		{"", http.StatusBadRequest},
		{"?city=Lisbon&units=kelvin", http.StatusBadRequest},
		{"?city=Atlantis", http.StatusNotFound},
		{"?city=Broken", http.StatusBadGateway},
		{"?city=Lisbon&units=f", http.StatusOK},
	}

	for _, tc := range cases {
		resp, err := http.Get(ts.URL + "/api/weather" + tc.query)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, tc.status, resp.StatusCode, "GET /api/weather%s", tc.query)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/search")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "stub", body["provider"])
}
