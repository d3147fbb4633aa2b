package surface

import (
	"fmt"
	"os"

	"github.com/annel0/footstep-fx/internal/logging"
	"gopkg.in/yaml.v3"
)

// Row строка авторской таблицы шагов
type Row struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Type     Kind   `json:"type" yaml:"type"`
	Sound    string `json:"sound,omitempty" yaml:"sound,omitempty"`
	Decal    string `json:"decal,omitempty" yaml:"decal,omitempty"`
	Particle string `json:"particle,omitempty" yaml:"particle,omitempty"`
}

// Table авторская таблица соответствий поверхностей и эффектов.
// Формат YAML (JSON тоже подходит, так как является подмножеством YAML):
//
//	default: default
//	rows:
//	  - name: grass
//	    type: grass
//	    sound: sfx/step_grass
//	    decal: decals/foot_grass
//	    particle: fx/grass_puff
type Table struct {
	Default Kind  `json:"default" yaml:"default"`
	Rows    []Row `json:"rows" yaml:"rows"`
}

// ParseTable разбирает таблицу из YAML/JSON
func ParseTable(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return &table, nil
}

// Marshal сериализует таблицу в YAML
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

// Build строит реестр из таблицы, сохраняя порядок строк
func (t *Table) Build() *Registry {
	if t == nil {
		return NewRegistry(KindDefault)
	}
	entries := make([]Entry, 0, len(t.Rows))
	for _, row := range t.Rows {
		entries = append(entries, Entry{
			Kind: row.Type,
			Bundle: EffectBundle{
				Sound:    row.Sound,
				Decal:    row.Decal,
				Particle: row.Particle,
			},
		})
	}
	return NewRegistry(t.Default, entries...)
}

// TableFromRegistry восстанавливает таблицу из реестра (для сохранения в хранилище)
func TableFromRegistry(r *Registry) *Table {
	table := &Table{Default: r.DefaultKind()}
	for _, e := range r.Entries() {
		table.Rows = append(table.Rows, Row{
			Name:     e.Kind.String(),
			Type:     e.Kind,
			Sound:    e.Bundle.Sound,
			Decal:    e.Bundle.Decal,
			Particle: e.Bundle.Particle,
		})
	}
	return table
}

// LoadTableFile читает таблицу с диска и строит реестр.
// Проблемы конфигурации только логируются: отсутствие контента не должно останавливать игру.
func LoadTableFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение таблицы поверхностей %s: %w", path, err)
	}

	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("таблица %s: %w", path, err)
	}

	registry := table.Build()
	ReportProblems(path, registry)
	return registry, nil
}

// ReportProblems пишет предупреждения Validate в лог компонента surface
func ReportProblems(source string, r *Registry) {
	if err := r.Validate(); err != nil {
		logging.GetSurfaceLogger().Warn("⚠️ Таблица поверхностей %s: %v", source, err)
		return
	}
	logging.GetSurfaceLogger().Debug("Таблица поверхностей %s: %d записей, default=%s", source, r.Len(), r.DefaultKind())
}

// DemoTable возвращает встроенную таблицу для симулятора
func DemoTable() *Table {
	return &Table{
		Default: KindDefault,
		Rows: []Row{
			{Name: "default", Type: KindDefault, Sound: "sfx/step_default"},
			{Name: "grass", Type: KindGrass, Sound: "sfx/step_grass", Decal: "decals/foot_grass", Particle: "fx/grass_puff"},
			{Name: "dirt", Type: KindDirt, Sound: "sfx/step_dirt", Decal: "decals/foot_dirt", Particle: "fx/dust"},
			{Name: "stone", Type: KindStone, Sound: "sfx/step_stone"},
			{Name: "sand", Type: KindSand, Sound: "sfx/step_sand", Decal: "decals/foot_sand", Particle: "fx/sand_kick"},
			{Name: "water", Type: KindWater, Sound: "sfx/step_water", Particle: "fx/splash"},
			{Name: "snow", Type: KindSnow, Sound: "sfx/step_snow", Decal: "decals/foot_snow", Particle: "fx/snow_puff"},
			{Name: "mud", Type: KindMud, Sound: "sfx/step_mud", Decal: "decals/foot_mud"},
		},
	}
}
