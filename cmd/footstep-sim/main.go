package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/annel0/footstep-fx/internal/api"
	"github.com/annel0/footstep-fx/internal/config"
	"github.com/annel0/footstep-fx/internal/eventbus"
	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/logging"
	"github.com/annel0/footstep-fx/internal/metrics"
	"github.com/annel0/footstep-fx/internal/observability"
	"github.com/annel0/footstep-fx/internal/sim"
	"github.com/annel0/footstep-fx/internal/storage"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/terrain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $"+config.ConfigEnv+")")
	steps := flag.Int("steps", 0, "шагов на персонажа (переопределяет sim.steps)")
	actors := flag.Int("actors", 0, "количество персонажей (переопределяет sim.actors)")
	serve := flag.Bool("serve", false, "после прогона держать REST API до сигнала")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *steps > 0 {
		cfg.Sim.Steps = *steps
	}
	if *actors > 0 {
		cfg.Sim.Actors = *actors
	}
	if *serve {
		cfg.Server.Enabled = true
	}

	logging.SetLogDir(cfg.Log.Dir)
	if err := logging.InitDefaultLogger("footstep-sim"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()
	logging.SetConsoleLevel(logging.ParseLevel(cfg.Log.Level))

	logging.Info("👣 Запуск симулятора шагов (seed=%d, персонажей=%d, шагов=%d)", cfg.Sim.Seed, cfg.Sim.Actors, cfg.Sim.Steps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *serve); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
	logging.Info("👋 Симулятор остановлен")
}

func run(ctx context.Context, cfg *config.Config, serve bool) error {
	// === ТРАССИРОВКА ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, "footstep-sim", cfg.Telemetry)
		if err != nil {
			logging.Warn("⚠️ OpenTelemetry недоступен: %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// === ТАБЛИЦА ПОВЕРХНОСТЕЙ ===
	registry, store, err := loadRegistry(ctx, cfg.Surfaces)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	// === ШИНА СОБЫТИЙ ===
	bus, err := newBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		return fmt.Errorf("logging listener: %w", err)
	}

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stepMetrics, err := metrics.NewFootstepMetrics(reg)
	if err != nil {
		return err
	}
	busMetrics, err := eventbus.NewMetricsExporter(bus, reg)
	if err != nil {
		return err
	}
	busMetrics.Start(time.Second)
	defer busMetrics.Stop()

	if cfg.Server.MetricsEnabled {
		metricsServer := metrics.NewHTTPServer(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), reg)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logging.Error("❌ Ошибка Prometheus HTTP сервера: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Stop(shutdownCtx); err != nil {
				logging.Error("❌ Ошибка остановки Prometheus HTTP сервера: %v", err)
			}
		}()
	}

	// === REST API ===
	var server *api.RestServer
	if cfg.Server.Enabled {
		var tables api.TableLister
		if store != nil {
			tables = store
		}
		server, err = api.NewRestServer(api.Config{
			Addr:       fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
			Service:    "footstep_api",
			Registry:   registry,
			Steps:      stepMetrics,
			Bus:        bus,
			Tables:     tables,
			Registerer: reg,
			Gatherer:   reg,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := server.Start(); err != nil {
				logging.Error("❌ Ошибка REST API: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				logging.Error("❌ Ошибка остановки REST API: %v", err)
			}
		}()
	}

	// === СИМУЛЯЦИЯ ===
	world := terrain.New(cfg.Sim.Seed, cfg.Sim.CellSize)
	simulation := sim.New(world, registry, sim.Options{
		Seed:     cfg.Sim.Seed,
		Speed:    cfg.Sim.Speed,
		Stride:   cfg.Sim.Stride,
		Tick:     cfg.Sim.Tick,
		Footstep: cfg.Footstep,
	}, func(id footstep.ActorID) sim.Effects {
		pub := eventbus.NewEffectPublisher(bus, cfg.EventBus.Source, id)
		return sim.Effects{
			Audio:     pub.Audio(),
			Decals:    pub.Decals(),
			Particles: pub.Particles(),
			Observer:  metrics.Fanout{stepMetrics, pub},
		}
	})

	for i := 0; i < cfg.Sim.Actors; i++ {
		if _, err := simulation.Spawn(float64(i)*cfg.Sim.CellSize*5, 0); err != nil {
			return err
		}
	}

	started := time.Now()
	res, err := simulation.Run(ctx, cfg.Sim.Steps)
	if err != nil {
		return err
	}
	printSummary(res, stepMetrics.Summary(), time.Since(started))

	if cfg.Server.Enabled && serve {
		logging.Info("🌐 REST API: http://localhost:%d/api/surfaces, Ctrl+C для выхода", cfg.Server.GetRESTPort())
		<-ctx.Done()
	}
	return nil
}

// loadRegistry загружает таблицу: файл, BadgerDB, MariaDB, Redis, демо-таблица
func loadRegistry(ctx context.Context, cfg config.SurfacesConfig) (*surface.Registry, *storage.TableStore, error) {
	var store *storage.TableStore
	if cfg.DataDir != "" {
		var err error
		store, err = storage.NewTableStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
	}

	registry, source, err := pickRegistry(ctx, cfg, store)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}
	logging.Info("🗺️ Таблица поверхностей: %s (%d записей, default=%s)", source, registry.Len(), registry.DefaultKind())

	if store != nil && cfg.SaveTable && source != "badger" {
		if err := store.SaveTable(cfg.TableName, surface.TableFromRegistry(registry)); err != nil {
			logging.Warn("⚠️ Не удалось сохранить таблицу %s: %v", cfg.TableName, err)
		}
	}
	return registry, store, nil
}

func pickRegistry(ctx context.Context, cfg config.SurfacesConfig, store *storage.TableStore) (*surface.Registry, string, error) {
	if cfg.TablePath != "" {
		registry, err := surface.LoadTableFile(cfg.TablePath)
		return registry, "file", err
	}

	if store != nil {
		registry, err := store.LoadRegistry(cfg.TableName)
		if err == nil {
			return registry, "badger", nil
		}
		if !errors.Is(err, storage.ErrTableNotFound) {
			return nil, "", err
		}
	}

	if cfg.Maria != nil {
		src, err := storage.NewMariaTableSource(ctx, *cfg.Maria)
		if err != nil {
			logging.Warn("⚠️ MariaDB недоступна: %v", err)
		} else {
			defer src.Close()
			registry, err := src.LoadRegistry(ctx, cfg.TableName)
			if err == nil {
				return registry, "maria", nil
			}
			logging.Warn("⚠️ Таблица из MariaDB не загружена: %v", err)
		}
	}

	if cfg.Redis != nil {
		src, err := storage.NewRedisTableSource(ctx, cfg.Redis)
		if err != nil {
			logging.Warn("⚠️ Redis недоступен: %v", err)
		} else {
			defer src.Close()
			registry, err := src.Load(ctx)
			if err == nil {
				return registry, "redis", nil
			}
			logging.Warn("⚠️ Таблица из Redis не загружена: %v", err)
		}
	}

	registry := surface.DemoTable().Build()
	return registry, "demo", nil
}

func newBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.Mode == config.BusJetStream {
		bus, err := eventbus.NewJetStreamBus(cfg.JetStream)
		if err != nil {
			return nil, err
		}
		logging.Info("🌊 Шина событий: JetStream %s", cfg.JetStream.URL)
		return bus, nil
	}
	logging.Info("🧠 Шина событий: in-memory (буфер %d)", cfg.Capacity)
	return eventbus.NewMemoryBus(cfg.Capacity), nil
}

func printSummary(res sim.Result, summary metrics.Summary, elapsed time.Duration) {
	logging.Info("📊 Итог: %d шагов за %s игрового времени (%s реального)", summary.Steps, res.SimTime, elapsed.Round(time.Millisecond))

	outcomes := make([]string, 0, len(summary.Outcomes))
	for name := range summary.Outcomes {
		outcomes = append(outcomes, name)
	}
	sort.Strings(outcomes)
	for _, name := range outcomes {
		logging.Info("   %-12s %d", name, summary.Outcomes[name])
	}

	kinds := make([]string, 0, len(summary.Kinds))
	for name := range summary.Kinds {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)
	for _, name := range kinds {
		logging.Info("   🦶 %-10s %d", name, summary.Kinds[name])
	}
	logging.Info("   звуков=%d следов=%d частиц=%d подмен=%d", summary.Sounds, summary.Decals, summary.Particles, summary.Fallbacks)
}
