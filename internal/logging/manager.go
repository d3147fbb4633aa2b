package logging

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Имена компонентов, которые используются в пакетах модуля
const (
	ComponentFootstep = "footstep"
	ComponentSurface  = "surface"
	ComponentEventBus = "eventbus"
	ComponentStorage  = "storage"
)

// ErrUnknownComponent логгер компонента ещё не создавался
var ErrUnknownComponent = errors.New("logger component not registered")

// LoggerManager хранит по одному логгеру на компонент.
// Повторный запрос того же компонента возвращает уже созданный экземпляр.
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

func (lm *LoggerManager) lookup(component string) (*Logger, bool) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	logger, ok := lm.loggers[component]
	return logger, ok
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	if logger, ok := lm.lookup(component); ok {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("logger %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger не возвращает ошибок: если файл лога не открылся, пишем только в консоль
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ %v, логирование только в консоль\n", err)
		return NewConsoleLogger(component, os.Stdout, consoleLevel)
	}
	return logger
}

// CloseAll закрывает файлы всех логгеров и забывает их.
// Возвращается первая ошибка закрытия.
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	loggers := lm.loggers
	lm.loggers = make(map[string]*Logger)
	lm.mu.Unlock()

	var firstErr error
	for component, logger := range loggers {
		if err := logger.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close logger %s: %w", component, err)
		}
	}
	return firstErr
}

// ListComponents возвращает имена компонентов по алфавиту
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	lm.mu.RUnlock()

	sort.Strings(components)
	return components
}

// SetLogLevel задаёт пороги консоли и файла для одного компонента
func (lm *LoggerManager) SetLogLevel(component string, console, file LogLevel) error {
	logger, ok := lm.lookup(component)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, component)
	}

	logger.mu.Lock()
	logger.minConsoleLevel = console
	logger.minFileLevel = file
	logger.mu.Unlock()
	return nil
}

// SetLevelAll задаёт уровень консоли всем зарегистрированным логгерам
func (lm *LoggerManager) SetLevelAll(level LogLevel) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	for _, logger := range lm.loggers {
		logger.SetLevel(level)
	}
}

// GetComponentLogger короткий доступ к логгеру компонента через глобальный менеджер
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetFootstepLogger() *Logger { return GetComponentLogger(ComponentFootstep) }

func GetSurfaceLogger() *Logger { return GetComponentLogger(ComponentSurface) }

func GetEventBusLogger() *Logger { return GetComponentLogger(ComponentEventBus) }

func GetStorageLogger() *Logger { return GetComponentLogger(ComponentStorage) }
