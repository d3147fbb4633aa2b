package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr     string `yaml:"addr"`     // Адрес Redis сервера
	Password string `yaml:"password"` // Пароль (пустой если не требуется)
	DB       int    `yaml:"db"`       // Номер базы данных
	Key      string `yaml:"key"`      // Ключ, под которым лежит таблица
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr: "localhost:6379",
		Key:  "footstep:surfaces",
	}
}

// RedisTableSource общая таблица поверхностей для нескольких серверов симуляции.
// Таблица хранится в YAML под одним ключом.
type RedisTableSource struct {
	client *redis.Client
	key    string
}

// NewRedisTableSource подключается к Redis и проверяет соединение
func NewRedisTableSource(ctx context.Context, config *RedisConfig) (*RedisTableSource, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.Key == "" {
		config.Key = DefaultRedisConfig().Key
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTableSource{client: client, key: config.Key}, nil
}

// Load читает таблицу и строит реестр
func (s *RedisTableSource) Load(ctx context.Context) (*surface.Registry, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis key %s", ErrTableNotFound, s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	table, err := surface.ParseTable(data)
	if err != nil {
		return nil, err
	}
	registry := table.Build()
	surface.ReportProblems("redis:"+s.key, registry)
	return registry, nil
}

// Publish записывает таблицу в Redis
func (s *RedisTableSource) Publish(ctx context.Context, table *surface.Table) error {
	data, err := table.Marshal()
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Close закрывает соединение
func (s *RedisTableSource) Close() error {
	return s.client.Close()
}
