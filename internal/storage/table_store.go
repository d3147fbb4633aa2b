package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/footstep-fx/internal/logging"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

const tableKeyPrefix = "surface_table:"

var (
	// ErrTableNotFound таблица с таким именем не сохранена
	ErrTableNotFound = errors.New("surface table not found")
	// ErrStoreClosed хранилище закрыто
	ErrStoreClosed = errors.New("table store is closed")
)

// TableStore хранит авторские таблицы поверхностей в BadgerDB.
// Значения - YAML таблицы, сжатый zstd.
type TableStore struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewTableStore открывает (или создаёт) хранилище в каталоге dataPath/surfaces
func NewTableStore(dataPath string) (*TableStore, error) {
	dbPath := filepath.Join(dataPath, "surfaces")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &TableStore{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close закрывает хранилище
func (ts *TableStore) Close() error {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	if !ts.isReady {
		return nil
	}

	ts.isReady = false
	ts.encoder.Close()
	ts.decoder.Close()
	return ts.db.Close()
}

// SaveTable сохраняет таблицу под именем name
func (ts *TableStore) SaveTable(name string, table *surface.Table) error {
	ts.mutex.RLock()
	defer ts.mutex.RUnlock()

	if !ts.isReady {
		return ErrStoreClosed
	}

	data, err := table.Marshal()
	if err != nil {
		return fmt.Errorf("ошибка сериализации таблицы: %w", err)
	}
	compressed := ts.encoder.EncodeAll(data, nil)

	err = ts.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(tableKeyPrefix+name), compressed)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	logging.GetStorageLogger().Debug("Таблица %s сохранена: %d -> %d байт", name, len(data), len(compressed))
	return nil
}

// LoadTable загружает таблицу по имени
func (ts *TableStore) LoadTable(name string) (*surface.Table, error) {
	ts.mutex.RLock()
	defer ts.mutex.RUnlock()

	if !ts.isReady {
		return nil, ErrStoreClosed
	}

	var compressed []byte
	err := ts.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tableKeyPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			compressed = append([]byte{}, val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	data, err := ts.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки таблицы %s: %w", name, err)
	}

	return surface.ParseTable(data)
}

// LoadRegistry загружает таблицу и строит реестр
func (ts *TableStore) LoadRegistry(name string) (*surface.Registry, error) {
	table, err := ts.LoadTable(name)
	if err != nil {
		return nil, err
	}
	registry := table.Build()
	surface.ReportProblems("badger:"+name, registry)
	return registry, nil
}

// DeleteTable удаляет таблицу
func (ts *TableStore) DeleteTable(name string) error {
	ts.mutex.RLock()
	defer ts.mutex.RUnlock()

	if !ts.isReady {
		return ErrStoreClosed
	}
	return ts.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(tableKeyPrefix + name))
	})
}

// ListTables возвращает имена сохранённых таблиц по алфавиту
func (ts *TableStore) ListTables() ([]string, error) {
	ts.mutex.RLock()
	defer ts.mutex.RUnlock()

	if !ts.isReady {
		return nil, ErrStoreClosed
	}

	var names []string
	err := ts.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(tableKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, strings.TrimPrefix(key, tableKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}
