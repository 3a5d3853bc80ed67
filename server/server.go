package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"weather-dashboard/models"
	"weather-dashboard/viewmodel"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"hasPrefix": strings.HasPrefix,
}

// Options настройки HTTP сервера
type Options struct {
	DefaultUnits   models.Unit
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	SourceName     string
	DeploymentURL  string
}

// Server отдает страницу погоды и JSON API поверх view-model
type Server struct {
	fetcher  viewmodel.Fetcher
	sessions *Sessions
	opts     Options
	tmpl     *template.Template
	mux      *http.ServeMux
}

func New(fetcher viewmodel.Fetcher, opts Options) *Server {
	if opts.DefaultUnits == "" {
		opts.DefaultUnits = models.Metric
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	s := &Server{
		fetcher: fetcher,
		opts:    opts,
		tmpl:    template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")),
		mux:     http.NewServeMux(),
	}
	s.sessions = NewSessions(opts.SessionTTL, func() *viewmodel.ViewModel {
		return viewmodel.New(fetcher, opts.DefaultUnits)
	})
	s.routes()
	return s
}

func (s *Server) Router() http.Handler { return loggingMiddleware(s.mux) }

func (s *Server) routes() {
	// UI
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/search", s.handleSearchForm)
	s.mux.HandleFunc("/unit", s.handleUnitForm)

	// API
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/search", s.handleSearch)
	s.mux.HandleFunc("/api/unit", s.handleUnit)
	s.mux.HandleFunc("/api/weather", s.handleWeather)
	s.mux.HandleFunc("/api/health", s.handleHealth)
}

// Run слушает addr до отмены ctx, затем корректно останавливается
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.opts.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.opts.SessionTTL > 0 {
		go s.sessions.pruneLoop(ctx, s.opts.SessionTTL/2)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Сервер запущен addr=%s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Завершение работы сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Println("Сервер остановлен")
	return nil
}

type page struct {
	viewmodel.Display
	SourceName    string
	DeploymentURL string
	TrendViewBox  string
	TrendHeight   int
}

// отступ вокруг графика, чтобы крайние точки не обрезались
const trendPad = 4

func trendViewBox(width, height int) string {
	return fmt.Sprintf("%d %d %d %d", -trendPad, -trendPad, width+2*trendPad, height+2*trendPad)
}

// GET / главная страница
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	vm := s.sessions.Get(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.tmpl.ExecuteTemplate(w, "dashboard.html", page{
		Display:       vm.Display(),
		SourceName:    s.opts.SourceName,
		DeploymentURL: s.opts.DeploymentURL,
		TrendViewBox:  trendViewBox(viewmodel.TrendWidth, viewmodel.TrendHeight),
		TrendHeight:   viewmodel.TrendHeight,
	})
	if err != nil {
		log.Printf("render failed: path=%s err=%v", r.URL.Path, err)
	}
}

// POST /search отправка формы поиска
func (s *Server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	vm := s.sessions.Get(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	vm.Submit(ctx, r.FormValue("city"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// POST /unit переключатель единиц
func (s *Server) handleUnitForm(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	applyUnit(s.sessions.Get(w, r), r.FormValue("unit"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GET /api/state состояние сессии
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, r, http.StatusOK, s.sessions.Get(w, r).Display())
}

type searchRequest struct {
	City string `json:"city"`
}

// POST /api/search {"city": "..."}
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	vm := s.sessions.Get(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	vm.Submit(ctx, req.City)
	writeJSON(w, r, http.StatusOK, vm.Display())
}

type unitRequest struct {
	Unit string `json:"unit"`
}

// POST /api/unit {"unit": "imperial"}, без unit переключает
func (s *Server) handleUnit(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	// пустое тело (в том числе chunked) означает переключение
	var req unitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Unit != "" {
		if _, err := models.ParseUnit(req.Unit); err != nil {
			writeError(w, r, http.StatusBadRequest, "unit must be metric or imperial")
			return
		}
	}

	vm := s.sessions.Get(w, r)
	applyUnit(vm, req.Unit)
	writeJSON(w, r, http.StatusOK, vm.Display())
}

func applyUnit(vm *viewmodel.ViewModel, value string) {
	if unit, err := models.ParseUnit(value); err == nil {
		vm.SetUnit(unit)
		return
	}
	vm.ToggleUnit()
}

// GET /api/weather?city=&units= один цикл без сессии
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, r, http.StatusBadRequest, "city is required")
		return
	}

	unit := s.opts.DefaultUnits
	if v := r.URL.Query().Get("units"); v != "" {
		parsed, err := models.ParseUnit(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "units must be metric or imperial")
			return
		}
		unit = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	state := viewmodel.New(s.fetcher, unit).Submit(ctx, city)
	display := viewmodel.Render(state)

	if state.Phase == viewmodel.Failed {
		status := http.StatusBadGateway
		if state.Error == viewmodel.MsgCityNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, r, status, display)
		return
	}

	writeJSON(w, r, http.StatusOK, display)
}

// GET /api/health проверка здоровья сервиса
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"provider":  s.opts.SourceName,
		"sessions":  s.sessions.Len(),
	})
}
