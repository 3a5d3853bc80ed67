package viewmodel

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"

	"weather-dashboard/models"
)

// Phase состояние экрана: Idle -> Loading -> Loaded | Failed
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

var phaseNames = [...]string{"idle", "loading", "loaded", "failed"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// JSONSchema в схеме фаза описывается строкой, а не числом
func (Phase) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(phaseNames))
	for _, name := range phaseNames {
		enum = append(enum, name)
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// State снимок состояния view-model. Возвращается по значению, Snapshot
// после записи в состояние не изменяется.
type State struct {
	Phase       Phase
	Query       string
	Snapshot    *models.WeatherSnapshot
	Error       string
	Unit        models.Unit
	LastUpdated time.Time
	Generation  uint64
}
