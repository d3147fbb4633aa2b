package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/footstep-fx/internal/eventbus"
	"github.com/annel0/footstep-fx/internal/logging"
	"github.com/annel0/footstep-fx/internal/metrics"
	"github.com/annel0/footstep-fx/internal/middleware"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// StepStats источник сводки шагов
type StepStats interface {
	Summary() metrics.Summary
}

// BusStats источник статистики шины событий
type BusStats interface {
	Metrics() eventbus.Stats
}

// TableLister перечисляет сохранённые таблицы поверхностей
type TableLister interface {
	ListTables() ([]string, error)
}

// RestServer REST API для просмотра таблицы поверхностей и статистики шагов
type RestServer struct {
	router   *gin.Engine
	server   *http.Server
	addr     string
	registry *surface.Registry
	steps    StepStats
	bus      BusStats
	tables   TableLister
	metrics  *ServerMetrics
	log      *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Addr     string            // адрес для запуска сервера
	Service  string            // имя сервиса для otel и префикс HTTP-метрик
	Registry *surface.Registry // активная таблица поверхностей
	Steps    StepStats         // может быть nil
	Bus      BusStats          // может быть nil
	Tables   TableLister       // может быть nil
	// Registerer и Gatherer Prometheus; nil - глобальный регистр
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.Service == "" {
		config.Service = "footstep_api"
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(config.Service))
	router.Use(middleware.NewRequestLogger(nil).Handler())

	promMw, err := middleware.NewPrometheusMiddleware(config.Service, config.Registerer)
	if err != nil {
		return nil, err
	}
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	rs := &RestServer{
		router:   router,
		addr:     config.Addr,
		registry: config.Registry,
		steps:    config.Steps,
		bus:      config.Bus,
		tables:   config.Tables,
		metrics:  NewServerMetrics(),
		log:      logging.GetComponentLogger("api"),
	}
	rs.setupRoutes()

	return rs, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/surfaces", rs.handleSurfaces)
		api.GET("/surfaces/:kind", rs.handleSurface)
		api.GET("/surfaces/:kind/resolve", rs.handleResolve)
		api.GET("/tables", rs.handleTables)
		api.GET("/stats", rs.handleStats)
		api.GET("/server", rs.handleServerInfo)
	}
}

// Handler возвращает http.Handler (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает REST сервер; блокирует до остановки
func (rs *RestServer) Start() error {
	rs.server = &http.Server{
		Addr:              rs.addr,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.log.Info("🌐 REST API слушает %s", rs.addr)

	err := rs.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop корректно останавливает сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.server == nil {
		return nil
	}
	return rs.server.Shutdown(ctx)
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"time":     time.Now().Unix(),
		"surfaces": rs.registry.Len(),
	})
}

// SurfaceView описание одной записи таблицы
type SurfaceView struct {
	Kind   surface.Kind         `json:"kind"`
	Bundle surface.EffectBundle `json:"bundle"`
}

// handleSurfaces возвращает записи таблицы в порядке авторства
func (rs *RestServer) handleSurfaces(c *gin.Context) {
	entries := rs.registry.Entries()
	views := make([]SurfaceView, 0, len(entries))
	for _, e := range entries {
		views = append(views, SurfaceView{Kind: e.Kind, Bundle: e.Bundle})
	}

	var problems []string
	if err := rs.registry.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Таблица поверхностей",
		Data: gin.H{
			"default":  rs.registry.DefaultKind(),
			"entries":  views,
			"total":    len(views),
			"problems": problems,
		},
	})
}

func (rs *RestServer) parseKind(c *gin.Context) (surface.Kind, bool) {
	kind, err := surface.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неизвестный тип поверхности: " + c.Param("kind"),
		})
		return 0, false
	}
	return kind, true
}

// handleSurface возвращает запись для типа без подстановки значения по умолчанию
func (rs *RestServer) handleSurface(c *gin.Context) {
	kind, ok := rs.parseKind(c)
	if !ok {
		return
	}

	bundle, found := rs.registry.Lookup(kind)
	if !found {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Для поверхности нет записи",
			Data:    gin.H{"kind": kind},
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Запись поверхности",
		Data:    SurfaceView{Kind: kind, Bundle: bundle},
	})
}

// ResolveView результат предпросмотра разрешения
type ResolveView struct {
	Kind     surface.Kind         `json:"kind"`
	Default  surface.Kind         `json:"default"`
	Fallback bool                 `json:"fallback"`
	Bundle   surface.EffectBundle `json:"bundle"`
	Empty    bool                 `json:"empty"`
}

// handleResolve показывает, какие эффекты сработают при шаге по поверхности
func (rs *RestServer) handleResolve(c *gin.Context) {
	kind, ok := rs.parseKind(c)
	if !ok {
		return
	}

	defaultKind := rs.registry.DefaultKind()
	bundle, fallback := rs.registry.ResolveFrom(kind, defaultKind)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Эффекты шага",
		Data: ResolveView{
			Kind:     kind,
			Default:  defaultKind,
			Fallback: fallback,
			Bundle:   bundle,
			Empty:    bundle.IsEmpty(),
		},
	})
}

// handleTables перечисляет таблицы в хранилище
func (rs *RestServer) handleTables(c *gin.Context) {
	if rs.tables == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Хранилище таблиц не подключено",
		})
		return
	}

	names, err := rs.tables.ListTables()
	if err != nil {
		rs.log.Error("❌ Не удалось получить список таблиц: %v", err)
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Сохранённые таблицы",
		Data:    gin.H{"tables": names, "total": len(names)},
	})
}

// handleStats возвращает статистику шагов и шины событий
func (rs *RestServer) handleStats(c *gin.Context) {
	stats := make(map[string]interface{})
	if rs.steps != nil {
		stats["footsteps"] = rs.steps.Summary()
	}
	if rs.bus != nil {
		stats["eventbus"] = rs.bus.Metrics()
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

// handleServerInfo возвращает информацию о процессе
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    rs.metrics.Snapshot(),
	})
}
