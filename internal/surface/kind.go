package surface

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind представляет идентификатор физического материала поверхности
type Kind uint8

// Константы типов поверхностей
const (
	KindDefault   Kind = iota // 0 - резервный тип
	KindGrass                 // 1
	KindDirt                  // 2
	KindStone                 // 3
	KindSand                  // 4
	KindWater                 // 5
	KindDeepWater             // 6
	KindWood                  // 7
	KindMetal                 // 8
	KindSnow                  // 9
	KindGravel                // 10
	KindMud                   // 11

	kindCount
)

var kindNames = [kindCount]string{
	KindDefault:   "default",
	KindGrass:     "grass",
	KindDirt:      "dirt",
	KindStone:     "stone",
	KindSand:      "sand",
	KindWater:     "water",
	KindDeepWater: "deep_water",
	KindWood:      "wood",
	KindMetal:     "metal",
	KindSnow:      "snow",
	KindGravel:    "gravel",
	KindMud:       "mud",
}

// String возвращает имя типа поверхности
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "kind_" + strconv.Itoa(int(k))
}

// AllKinds возвращает все именованные типы поверхностей
func AllKinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := KindDefault; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseKind разбирает имя типа поверхности (регистр не важен) или его числовое значение.
// Неименованные числовые значения допустимы: таблицы могут ссылаться на типы,
// которые движок объявил позже.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "surfacetype_")
	if name == "" {
		return KindDefault, fmt.Errorf("%w: пустое имя", ErrUnknownKind)
	}

	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}

	if n, err := strconv.ParseUint(strings.TrimPrefix(name, "kind_"), 10, 8); err == nil {
		return Kind(n), nil
	}

	return KindDefault, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText реализует encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML пишет тип поверхности по имени
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML принимает как имя, так и число
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: строка %d: ожидался скаляр", ErrUnknownKind, value.Line)
	}
	return k.UnmarshalText([]byte(value.Value))
}
