package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// Шаги цикла запроса, используются в StatusError
const (
	OpGeocode = "geocode"
	OpWeather = "weather"
)

// ErrCityNotFound геокодер не вернул ни одного кандидата
var ErrCityNotFound = errors.New("город не найден")

// StatusError ответ провайдера с кодом не 2xx
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: ошибка API: статус %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: ошибка API: статус %d", e.Op, e.Code)
}

// getJSON выполняет GET и декодирует JSON ответ в v
func getJSON(ctx context.Context, client *http.Client, op, endpoint string, query url.Values, v any) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка HTTP запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{
			Op:      op,
			Code:    resp.StatusCode,
			Message: apiMessage(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("ошибка парсинга JSON: %w", err)
	}
	return nil
}

// apiMessage достает текст ошибки из тела ответа. Форматы провайдеров:
// OpenWeather {"message"}, Open-Meteo {"reason"}, WeatherAPI {"error":{"message"}}.
func apiMessage(body []byte) string {
	var e struct {
		Message string          `json:"message"`
		Reason  string          `json:"reason"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return strings.TrimSpace(string(body))
	}

	switch {
	case e.Message != "":
		return e.Message
	case e.Reason != "":
		return e.Reason
	}

	var nested struct {
		Message string `json:"message"`
	}
	if len(e.Error) > 0 && json.Unmarshal(e.Error, &nested) == nil {
		return nested.Message
	}
	return ""
}
