package surface

import (
	"errors"
	"fmt"
)

// Registry хранит упорядоченный набор соответствий "тип поверхности -> эффекты"
// и тип по умолчанию для резервного поиска.
//
// Реестр заполняется один раз при загрузке и дальше только читается,
// поэтому Resolve безопасен для одновременного вызова из разных горутин.
type Registry struct {
	entries     []Entry
	index       map[Kind]EffectBundle
	defaultKind Kind
}

// NewRegistry создаёт реестр. Порядок entries важен только для дубликатов:
// выигрывает первая запись.
func NewRegistry(defaultKind Kind, entries ...Entry) *Registry {
	r := &Registry{
		entries:     make([]Entry, len(entries)),
		index:       make(map[Kind]EffectBundle, len(entries)),
		defaultKind: defaultKind,
	}
	copy(r.entries, entries)

	for _, e := range r.entries {
		if _, exists := r.index[e.Kind]; exists {
			continue
		}
		r.index[e.Kind] = e.Bundle
	}
	return r
}

// Resolve возвращает набор эффектов для типа поверхности.
// Если записи нет, делается один переход к типу по умолчанию; если нет и её,
// возвращается пустой набор. Пустой или nil реестр всегда даёт пустой набор.
func (r *Registry) Resolve(kind Kind) EffectBundle {
	bundle, _ := r.ResolveFrom(kind, r.DefaultKind())
	return bundle
}

// ResolveFrom работает как Resolve, но с явно заданным типом по умолчанию.
// fallback равен true, если точной записи не было и использовался defaultKind.
func (r *Registry) ResolveFrom(kind, defaultKind Kind) (bundle EffectBundle, fallback bool) {
	if r.IsEmpty() {
		return EffectBundle{}, false
	}

	if bundle, ok := r.index[kind]; ok {
		return bundle, false
	}

	if kind == defaultKind {
		return EffectBundle{}, false
	}

	// Один переход, без рекурсии
	bundle = r.index[defaultKind]
	return bundle, true
}

// Lookup ищет точное совпадение без резервного перехода
func (r *Registry) Lookup(kind Kind) (EffectBundle, bool) {
	if r == nil {
		return EffectBundle{}, false
	}
	bundle, ok := r.index[kind]
	return bundle, ok
}

// DefaultKind возвращает тип поверхности по умолчанию
func (r *Registry) DefaultKind() Kind {
	if r == nil {
		return KindDefault
	}
	return r.defaultKind
}

// IsEmpty возвращает true для nil или пустого реестра
func (r *Registry) IsEmpty() bool {
	return r == nil || len(r.entries) == 0
}

// Len возвращает количество записей (включая дубликаты)
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Entries возвращает копию записей в порядке авторской таблицы
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Kinds возвращает уникальные типы поверхностей в порядке первого появления
func (r *Registry) Kinds() []Kind {
	if r == nil {
		return nil
	}
	seen := make(map[Kind]struct{}, len(r.index))
	kinds := make([]Kind, 0, len(r.index))
	for _, e := range r.entries {
		if _, ok := seen[e.Kind]; ok {
			continue
		}
		seen[e.Kind] = struct{}{}
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// Validate проверяет реестр на проблемы конфигурации.
// Ни одна из них не мешает работе Resolve; результат предназначен для логов и инструментов.
func (r *Registry) Validate() error {
	if r.IsEmpty() {
		return ErrEmptyRegistry
	}

	var errs []error
	seen := make(map[Kind]int, len(r.entries))
	for i, e := range r.entries {
		if first, ok := seen[e.Kind]; ok {
			errs = append(errs, fmt.Errorf("%w: %s (строки %d и %d, используется первая)", ErrDuplicateKind, e.Kind, first, i))
			continue
		}
		seen[e.Kind] = i
	}

	if _, ok := r.index[r.defaultKind]; !ok {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingDefault, r.defaultKind))
	}

	return errors.Join(errs...)
}
