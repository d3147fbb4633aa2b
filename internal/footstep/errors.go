package footstep

import "errors"

var (
	// ErrNoOwner у диспетчера нет владельца или провайдера его состояния
	ErrNoOwner = errors.New("footstep: owner actor is not set")
	// ErrNoMesh у владельца нет скелетного представления
	ErrNoMesh = errors.New("footstep: owner has no skeletal mesh")
	// ErrNoWorld не задан движок пространственных запросов
	ErrNoWorld = errors.New("footstep: spatial query engine is not set")
	// ErrConfiguration фатальная ошибка настройки во время шага
	ErrConfiguration = errors.New("footstep: configuration error")
	// ErrUnknownFoot неизвестное имя ноги в конфигурации
	ErrUnknownFoot = errors.New("footstep: unknown foot")
)
