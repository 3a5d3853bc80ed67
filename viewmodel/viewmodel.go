package viewmodel

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"weather-dashboard/models"
	"weather-dashboard/obs"
)

// Fetcher один цикл запроса погоды по названию города
type Fetcher interface {
	GetWeather(ctx context.Context, city string) (*models.WeatherSnapshot, error)
}

// ViewModel хранит состояние экрана погоды.
//
// Каждый Submit получает номер поколения. Сетевые запросы идут без
// блокировки, и результат записывается только если за это время не было
// более нового Submit. Иначе ответ отбрасывается.
type ViewModel struct {
	fetcher Fetcher
	now     func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
}

func New(fetcher Fetcher, unit models.Unit) *ViewModel {
	if unit == "" {
		unit = models.Metric
	}
	return &ViewModel{
		fetcher: fetcher,
		now:     time.Now,
		state:   State{Phase: Idle, Unit: unit},
	}
}

// State текущее состояние (копия)
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Display проекция текущего состояния для отрисовки
func (vm *ViewModel) Display() Display {
	return Render(vm.State())
}

// Submit запускает цикл запроса для города. Пустой ввод игнорируется.
// Возвращает состояние после завершения цикла.
func (vm *ViewModel) Submit(ctx context.Context, query string) State {
	city := strings.TrimSpace(query)
	if city == "" {
		return vm.State()
	}

	gen := vm.begin(city)
	snap, err := vm.fetcher.GetWeather(ctx, city)
	return vm.commit(ctx, gen, snap, err)
}

func (vm *ViewModel) begin(city string) uint64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.generation++
	vm.state.Phase = Loading
	vm.state.Query = city
	vm.state.Error = ""
	vm.state.Generation = vm.generation
	return vm.generation
}

func (vm *ViewModel) commit(ctx context.Context, gen uint64, snap *models.WeatherSnapshot, err error) State {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if gen != vm.generation {
		log.Printf("req_id=%s stale result dropped gen=%d current=%d", obs.RequestID(ctx), gen, vm.generation)
		return vm.state
	}

	if err != nil {
		vm.state.Phase = Failed
		vm.state.Snapshot = nil
		vm.state.Error = ErrorMessage(err)
		log.Printf("req_id=%s query=%q failed: %v", obs.RequestID(ctx), vm.state.Query, err)
		return vm.state
	}

	vm.state.Phase = Loaded
	vm.state.Snapshot = snap
	vm.state.Error = ""
	vm.state.LastUpdated = vm.now()
	return vm.state
}

// SetUnit меняет единицы отображения, сохраненные значения не меняются
func (vm *ViewModel) SetUnit(unit models.Unit) State {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.state.Unit = unit
	return vm.state
}

// ToggleUnit переключает Цельсий/Фаренгейт
func (vm *ViewModel) ToggleUnit() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.state.Unit = vm.state.Unit.Toggle()
	return vm.state
}
