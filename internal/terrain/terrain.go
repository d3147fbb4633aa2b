package terrain

import (
	"math"
	"sync"

	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/util"
	"github.com/annel0/footstep-fx/internal/vec"
)

// Пороги высоты (шум от 0 до 1) для классификации поверхности
const (
	ChasmMax        = 0.05 // Ниже - провал, трассировка ничего не находит
	DeepWaterMax    = 0.20 // Ниже - глубокая вода
	ShallowWaterMax = 0.30 // Ниже - мелководье; уровень воды = 0
	BeachMax        = 0.35 // Ниже - песок
	LowlandMax      = 0.60 // Ниже - равнины (трава/земля/грязь по биому)
	HillMax         = 0.80 // Ниже - холмы (трава/гравий)
	MountainMax     = 0.92 // Ниже - камень, выше - снег
)

// Cell описание клетки поверхности
type Cell struct {
	Kind    surface.Kind
	HasKind bool    // false - у поверхности нет физического материала
	Height  float64 // высота земли в мировых единицах
	Void    bool    // провал: земли нет
}

// body вертикальный цилиндр другого персонажа
type body struct {
	center vec.Vec3Float // центр основания
	radius float64
	height float64
}

// Terrain процедурная поверхность мира. Реализует footstep.SpatialQueryEngine.
type Terrain struct {
	Seed        int64
	CellSize    float64 // размер клетки в мировых единицах
	HeightScale float64 // перепад высот в мировых единицах

	height *util.Noise
	biome  *util.Noise

	mu        sync.RWMutex
	overrides map[vec.Vec2]Cell
	bodies    map[footstep.ActorID]body
}

// New создаёт поверхность с указанным сидом
func New(seed int64, cellSize float64) *Terrain {
	if cellSize <= 0 {
		cellSize = 100
	}
	return &Terrain{
		Seed:        seed,
		CellSize:    cellSize,
		HeightScale: 400,
		height:      util.NewNoise(seed, 0.05),
		biome:       util.NewNoise(seed+1, 0.02),
		overrides:   make(map[vec.Vec2]Cell),
		bodies:      make(map[footstep.ActorID]body),
	}
}

// SetCell переопределяет клетку (мосты, металлические настилы, дыры)
func (t *Terrain) SetCell(pos vec.Vec2, cell Cell) {
	t.mu.Lock()
	t.overrides[pos] = cell
	t.mu.Unlock()
}

// PutBody размещает или перемещает тело персонажа
func (t *Terrain) PutBody(id footstep.ActorID, center vec.Vec3Float, radius, height float64) {
	t.mu.Lock()
	t.bodies[id] = body{center: center, radius: radius, height: height}
	t.mu.Unlock()
}

// RemoveBody убирает тело персонажа
func (t *Terrain) RemoveBody(id footstep.ActorID) {
	t.mu.Lock()
	delete(t.bodies, id)
	t.mu.Unlock()
}

// CellAt возвращает клетку по её координатам
func (t *Terrain) CellAt(pos vec.Vec2) Cell {
	t.mu.RLock()
	cell, ok := t.overrides[pos]
	t.mu.RUnlock()
	if ok {
		return cell
	}
	return t.generate(pos)
}

// generate классифицирует клетку по шуму высоты и биома
func (t *Terrain) generate(pos vec.Vec2) Cell {
	h := t.height.At(float64(pos.X), float64(pos.Y))
	b := t.biome.At(float64(pos.X), float64(pos.Y))

	cell := Cell{
		HasKind: true,
		Height:  (math.Max(h, ShallowWaterMax) - ShallowWaterMax) * t.HeightScale,
	}

	switch {
	case h < ChasmMax:
		cell.Void = true
		cell.HasKind = false
	case h < DeepWaterMax:
		cell.Kind = surface.KindDeepWater
	case h < ShallowWaterMax:
		cell.Kind = surface.KindWater
	case h < BeachMax:
		cell.Kind = surface.KindSand
	case h < LowlandMax:
		switch {
		case b < 0.3:
			cell.Kind = surface.KindDirt
		case b < 0.7:
			cell.Kind = surface.KindGrass
		default:
			cell.Kind = surface.KindMud
		}
	case h < HillMax:
		if b < 0.5 {
			cell.Kind = surface.KindGrass
		} else {
			cell.Kind = surface.KindGravel
		}
	case h < MountainMax:
		cell.Kind = surface.KindStone
	default:
		cell.Kind = surface.KindSnow
	}
	return cell
}

// GroundHeight возвращает высоту земли под точкой и false над провалом
func (t *Terrain) GroundHeight(p vec.Vec3Float) (float64, bool) {
	cell := t.CellAt(p.ToVec2(t.CellSize))
	if cell.Void {
		return 0, false
	}
	return cell.Height, true
}

// TraceDownward ищет ближайшее попадание на вертикальном отрезке start -> end.
// Тела персонажей не имеют физического материала; тело exclude игнорируется.
func (t *Terrain) TraceDownward(start, end vec.Vec3Float, exclude footstep.ActorID) (footstep.Hit, bool) {
	top, bottom := start.Z, end.Z
	if bottom > top {
		top, bottom = bottom, top
	}

	var (
		best  footstep.Hit
		found bool
	)

	cell := t.CellAt(start.ToVec2(t.CellSize))
	if !cell.Void && cell.Height <= top && cell.Height >= bottom {
		best = footstep.Hit{
			Location: start.WithZ(cell.Height),
			Kind:     cell.Kind,
			HasKind:  cell.HasKind,
		}
		found = true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	for id, b := range t.bodies {
		if id == exclude {
			continue
		}
		if start.Flat().DistanceTo(b.center.Flat()) > b.radius {
			continue
		}
		z := b.center.Z + b.height
		if z > top || z < bottom {
			continue
		}
		if !found || z > best.Location.Z {
			best = footstep.Hit{Location: start.WithZ(z)}
			found = true
		}
	}

	return best, found
}
