package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/go-sql-driver/mysql"
)

// MariaConfig параметры подключения к MariaDB/MySQL с таблицами поверхностей
type MariaConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DSN собирает строку подключения для драйвера mysql
func (c MariaConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	port := c.Port
	if port == 0 {
		port = 3306
	}
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, port)
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Timeout = 5 * time.Second
	return cfg.FormatDSN()
}

// MariaTableSource читает авторские таблицы, которые ведут дизайнеры в общей БД.
//
// Схема:
//
//	surface_tables  (name, default_kind)
//	surface_effects (table_name, position, name, kind, sound, decal, particle)
//
// position задаёт порядок авторства: при дубликатах типа побеждает меньший.
type MariaTableSource struct {
	db *sql.DB
}

// NewMariaTableSource подключается к БД и создаёт таблицы, если их нет
func NewMariaTableSource(ctx context.Context, config MariaConfig) (*MariaTableSource, error) {
	db, err := sql.Open("mysql", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	src := &MariaTableSource{db: db}
	if err := src.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return src, nil
}

func (s *MariaTableSource) createTables(ctx context.Context) error {
	queries := []string{`
		CREATE TABLE IF NOT EXISTS surface_tables (
			name         VARCHAR(64) PRIMARY KEY,
			default_kind VARCHAR(32) NOT NULL DEFAULT 'default',
			updated_at   TIMESTAMP   DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB`, `
		CREATE TABLE IF NOT EXISTS surface_effects (
			table_name VARCHAR(64)  NOT NULL,
			position   INT          NOT NULL,
			name       VARCHAR(64)  NOT NULL DEFAULT '',
			kind       VARCHAR(32)  NOT NULL,
			sound      VARCHAR(255) NOT NULL DEFAULT '',
			decal      VARCHAR(255) NOT NULL DEFAULT '',
			particle   VARCHAR(255) NOT NULL DEFAULT '',
			PRIMARY KEY (table_name, position)
		) ENGINE=InnoDB`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ошибка создания таблиц поверхностей: %w", err)
		}
	}
	return nil
}

// effectRow строка surface_effects
type effectRow struct {
	Name     string
	Kind     string
	Sound    string
	Decal    string
	Particle string
}

// buildTable собирает таблицу из строк БД в порядке position
func buildTable(defaultKind string, rows []effectRow) (*surface.Table, error) {
	def, err := surface.ParseKind(defaultKind)
	if err != nil {
		return nil, fmt.Errorf("%w: default_kind: %v", surface.ErrInvalidTable, err)
	}

	table := &surface.Table{Default: def, Rows: make([]surface.Row, 0, len(rows))}
	for i, r := range rows {
		kind, err := surface.ParseKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: строка %d: %v", surface.ErrInvalidTable, i, err)
		}
		table.Rows = append(table.Rows, surface.Row{
			Name:     r.Name,
			Type:     kind,
			Sound:    r.Sound,
			Decal:    r.Decal,
			Particle: r.Particle,
		})
	}
	return table, nil
}

// LoadTable читает таблицу по имени
func (s *MariaTableSource) LoadTable(ctx context.Context, name string) (*surface.Table, error) {
	var defaultKind string
	err := s.db.QueryRowContext(ctx, `SELECT default_kind FROM surface_tables WHERE name = ?`, name).Scan(&defaultKind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения таблицы %s: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, sound, decal, particle
		FROM surface_effects
		WHERE table_name = ?
		ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строк таблицы %s: %w", name, err)
	}
	defer rows.Close()

	var effects []effectRow
	for rows.Next() {
		var r effectRow
		if err := rows.Scan(&r.Name, &r.Kind, &r.Sound, &r.Decal, &r.Particle); err != nil {
			return nil, err
		}
		effects = append(effects, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return buildTable(defaultKind, effects)
}

// LoadRegistry читает таблицу и строит реестр
func (s *MariaTableSource) LoadRegistry(ctx context.Context, name string) (*surface.Registry, error) {
	table, err := s.LoadTable(ctx, name)
	if err != nil {
		return nil, err
	}
	registry := table.Build()
	surface.ReportProblems("maria:"+name, registry)
	return registry, nil
}

// SaveTable заменяет таблицу целиком в одной транзакции
func (s *MariaTableSource) SaveTable(ctx context.Context, name string, table *surface.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO surface_tables (name, default_kind) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE default_kind = VALUES(default_kind)`, name, table.Default.String())
	if err != nil {
		return fmt.Errorf("ошибка сохранения таблицы %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM surface_effects WHERE table_name = ?`, name); err != nil {
		return err
	}

	for i, r := range table.Rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO surface_effects (table_name, position, name, kind, sound, decal, particle)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, name, i, r.Name, r.Type.String(), r.Sound, r.Decal, r.Particle)
		if err != nil {
			return fmt.Errorf("ошибка сохранения строки %d таблицы %s: %w", i, name, err)
		}
	}
	return tx.Commit()
}

// Close закрывает соединение
func (s *MariaTableSource) Close() error {
	return s.db.Close()
}
