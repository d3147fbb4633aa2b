package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/footstep-fx/internal/eventbus"
	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/observability"
	"github.com/annel0/footstep-fx/internal/storage"
	"gopkg.in/yaml.v3"
)

// ConfigEnv переменная окружения с путём к файлу конфигурации
const ConfigEnv = "FOOTSTEP_CONFIG"

// ErrInvalidConfig конфигурация прочитана, но содержит недопустимые значения
var ErrInvalidConfig = errors.New("invalid config")

// Config корневая структура конфигурации приложения.
type Config struct {
	Footstep  footstep.Config      `yaml:"footstep"`
	Surfaces  SurfacesConfig       `yaml:"surfaces"`
	EventBus  EventBusConfig       `yaml:"eventbus"`
	Server    ServerConfig         `yaml:"server"`
	Telemetry observability.Config `yaml:"telemetry"`
	Sim       SimConfig            `yaml:"sim"`
	Log       LogConfig            `yaml:"log"`
}

// SurfacesConfig откуда брать таблицу поверхностей.
// Порядок: файл, BadgerDB, MariaDB, Redis, встроенная демо-таблица.
type SurfacesConfig struct {
	TablePath string               `yaml:"table_path"`
	DataDir   string               `yaml:"data_dir"`   // каталог BadgerDB
	TableName string               `yaml:"table_name"` // имя таблицы в BadgerDB
	SaveTable bool                 `yaml:"save_table"` // сохранять загруженную таблицу в BadgerDB
	Maria     *storage.MariaConfig `yaml:"maria,omitempty"`
	Redis     *storage.RedisConfig `yaml:"redis,omitempty"`
}

// Режимы шины событий
const (
	BusMemory    = "memory"
	BusJetStream = "jetstream"
)

type EventBusConfig struct {
	Mode      string                   `yaml:"mode"` // memory | jetstream
	Capacity  int                      `yaml:"capacity"`
	Source    string                   `yaml:"source"`
	JetStream eventbus.JetStreamConfig `yaml:"jetstream"`
}

type ServerConfig struct {
	Enabled  bool `yaml:"enabled"` // REST API
	RESTPort int  `yaml:"rest_port"`
	// MetricsEnabled отдельный /metrics на MetricsPort, работает и без REST API
	MetricsEnabled bool `yaml:"metrics_enabled"`
	MetricsPort    int  `yaml:"metrics_port"`
}

// SimConfig параметры симулятора
type SimConfig struct {
	Seed     int64         `yaml:"seed"`
	Actors   int           `yaml:"actors"`
	Steps    int           `yaml:"steps"`  // шагов на персонажа
	Speed    float64       `yaml:"speed"`  // скорость ходьбы, единиц в секунду
	Stride   float64       `yaml:"stride"` // расстояние между шагами
	Tick     time.Duration `yaml:"tick"`   // шаг игрового времени
	CellSize float64       `yaml:"cell_size"`
}

type LogConfig struct {
	Level string `yaml:"level"` // TRACE..ERROR, неизвестное значение - INFO
	Dir   string `yaml:"dir"`   // пусто - только консоль
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Footstep: footstep.DefaultConfig(),
		Surfaces: SurfacesConfig{
			TableName: "default",
		},
		EventBus: EventBusConfig{
			Mode:     BusMemory,
			Capacity: 1024,
			Source:   "footstep-sim",
		},
		Server: ServerConfig{MetricsEnabled: true},
		Sim: SimConfig{
			Seed:     42,
			Actors:   1,
			Steps:    20,
			Speed:    300,
			Stride:   120,
			Tick:     20 * time.Millisecond,
			CellSize: 100,
		},
		Log: LogConfig{Level: "INFO"},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "FOOTSTEP_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "FOOTSTEP_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берёт путь из FOOTSTEP_CONFIG; если и он пуст, возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить подстановкой по умолчанию
func (c *Config) Validate() error {
	var errs []error
	switch c.EventBus.Mode {
	case "", BusMemory:
	case BusJetStream:
		if c.EventBus.JetStream.URL == "" {
			errs = append(errs, errors.New("eventbus.jetstream.url обязателен в режиме jetstream"))
		}
	default:
		errs = append(errs, fmt.Errorf("неизвестный режим шины %q", c.EventBus.Mode))
	}
	if c.Footstep.TraceDepth < 0 {
		errs = append(errs, errors.New("footstep.trace_depth не может быть отрицательным"))
	}
	if c.Sim.Steps < 0 || c.Sim.Actors < 0 {
		errs = append(errs, errors.New("sim.steps и sim.actors не могут быть отрицательными"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidConfig, errors.Join(errs...))
}
