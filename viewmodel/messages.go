package viewmodel

import (
	"errors"
	"fmt"

	"weather-dashboard/providers"
)

const (
	MsgCityNotFound = "City not found"
	MsgGeneric      = "Something went wrong. Please try again."
)

// ErrorMessage текст баннера для ошибки цикла
func ErrorMessage(err error) string {
	if errors.Is(err, providers.ErrCityNotFound) {
		return MsgCityNotFound
	}

	var se *providers.StatusError
	if errors.As(err, &se) {
		if se.Op == providers.OpGeocode {
			return MsgCityNotFound
		}
		return fmt.Sprintf("Failed to fetch weather data (%d)", se.Code)
	}

	return MsgGeneric
}
