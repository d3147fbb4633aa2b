package surface

import "errors"

var (
	// ErrUnknownKind возвращается при разборе неизвестного имени поверхности
	ErrUnknownKind = errors.New("unknown surface kind")
	// ErrEmptyRegistry реестр не содержит записей
	ErrEmptyRegistry = errors.New("surface registry is empty")
	// ErrMissingDefault для типа по умолчанию нет записи
	ErrMissingDefault = errors.New("no entry for default surface kind")
	// ErrDuplicateKind тип поверхности описан несколько раз
	ErrDuplicateKind = errors.New("duplicate surface kind")
	// ErrInvalidTable таблица не разобрана
	ErrInvalidTable = errors.New("invalid surface table")
)
