package providers

import (
	"slices"
	"time"

	"weather-dashboard/models"
)

// upcomingHours оставляет точки строго после now по возрастанию времени,
// не больше limit (0 без ограничения)
func upcomingHours(points []models.HourlyPoint, now time.Time, limit int) []models.HourlyPoint {
	out := make([]models.HourlyPoint, 0, len(points))
	for _, p := range points {
		if p.Time.After(now) {
			out = append(out, p)
		}
	}

	slices.SortStableFunc(out, func(a, b models.HourlyPoint) int {
		return a.Time.Compare(b.Time)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
