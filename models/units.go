package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Unit единицы отображения температуры
type Unit string

const (
	Metric   Unit = "metric"   // градусы Цельсия
	Imperial Unit = "imperial" // градусы Фаренгейта
)

// ParseUnit разбирает название единиц, принимает также "c" и "f"
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric", "c", "celsius":
		return Metric, nil
	case "imperial", "f", "fahrenheit":
		return Imperial, nil
	}
	return "", fmt.Errorf("неизвестные единицы %q", s)
}

// Symbol знак единиц для вывода
func (u Unit) Symbol() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

// Toggle переключает Цельсий <-> Фаренгейт
func (u Unit) Toggle() Unit {
	if u == Imperial {
		return Metric
	}
	return Imperial
}

// Temperature переводит градусы Цельсия в выбранные единицы
func (u Unit) Temperature(c int) int {
	if u == Imperial {
		return CelsiusToFahrenheit(float64(c))
	}
	return c
}

// Round округляет до ближайшего целого
func Round(v float64) int {
	return int(math.Round(v))
}

// CelsiusToFahrenheit F = round(C*9/5+32)
func CelsiusToFahrenheit(c float64) int {
	return Round(c*9/5 + 32)
}

// FormatClock переводит unix секунды в 24-часовое локальное время
func FormatClock(unix int64, zone *time.Location) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).In(zone).Format("15:04")
}
