package providers

// Condition описание погоды для отображения
type Condition struct {
	Category    string
	Description string
	Icon        string
}

var (
	conditionHumid    = Condition{Category: "humid", Description: "overcast clouds", Icon: "04d"}
	conditionHot      = Condition{Category: "hot", Description: "clear sky", Icon: "01d"}
	conditionCold     = Condition{Category: "cold", Description: "few clouds", Icon: "02d"}
	conditionModerate = Condition{Category: "moderate", Description: "scattered clouds", Icon: "03d"}
)

// classify подбирает описание по температуре и влажности для источников без
// кода погоды. Это приближение для интерфейса, а не прогноз.
// Влажность проверяется первой: 85% при 20°C это "humid".
func classify(tempC, humidity int) Condition {
	switch {
	case humidity > 80:
		return conditionHumid
	case tempC > 30:
		return conditionHot
	case tempC < 10:
		return conditionCold
	default:
		return conditionModerate
	}
}
