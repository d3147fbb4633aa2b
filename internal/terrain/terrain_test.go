package terrain

import (
	"testing"

	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ footstep.SpatialQueryEngine = (*Terrain)(nil)

func TestTraceHitsOverriddenCell(t *testing.T) {
	tr := New(1, 100)
	tr.SetCell(vec.Vec2{X: 0, Y: 0}, Cell{Kind: surface.KindMetal, HasKind: true, Height: 25})

	start := vec.Vec3Float{X: 50, Y: 50, Z: 40}
	hit, ok := tr.TraceDownward(start, start.WithZ(-5000), "hero")
	require.True(t, ok)
	assert.Equal(t, surface.KindMetal, hit.Kind)
	assert.True(t, hit.HasKind)
	assert.Equal(t, vec.Vec3Float{X: 50, Y: 50, Z: 25}, hit.Location)
}

func TestTraceMissesVoidAndShortSegments(t *testing.T) {
	tr := New(1, 100)
	tr.SetCell(vec.Vec2{X: 0, Y: 0}, Cell{Void: true})
	tr.SetCell(vec.Vec2{X: 1, Y: 0}, Cell{Kind: surface.KindStone, HasKind: true, Height: 0})

	_, ok := tr.TraceDownward(vec.Vec3Float{X: 10, Y: 10, Z: 5}, vec.Vec3Float{X: 10, Y: 10, Z: -5000}, "")
	assert.False(t, ok, "провал не должен давать попадания")

	// Отрезок заканчивается выше земли
	_, ok = tr.TraceDownward(vec.Vec3Float{X: 110, Y: 10, Z: 50}, vec.Vec3Float{X: 110, Y: 10, Z: 10}, "")
	assert.False(t, ok)
}

func TestTraceCellWithoutMaterial(t *testing.T) {
	tr := New(1, 100)
	tr.SetCell(vec.Vec2{X: 0, Y: 0}, Cell{Height: 3})

	hit, ok := tr.TraceDownward(vec.Vec3Float{X: 1, Y: 1, Z: 10}, vec.Vec3Float{X: 1, Y: 1, Z: -10}, "")
	require.True(t, ok)
	assert.False(t, hit.HasKind)
}

func TestTraceIgnoresExcludedBody(t *testing.T) {
	tr := New(1, 100)
	tr.SetCell(vec.Vec2{X: 0, Y: 0}, Cell{Kind: surface.KindGrass, HasKind: true, Height: 0})
	tr.PutBody("hero", vec.Vec3Float{X: 50, Y: 50}, 30, 180)
	tr.PutBody("npc", vec.Vec3Float{X: 50, Y: 50, Z: -500}, 30, 520)

	start := vec.Vec3Float{X: 55, Y: 50, Z: 190}
	end := start.WithZ(-5000)

	// Тело npc выше земли, тело hero исключено
	hit, ok := tr.TraceDownward(start, end, "hero")
	require.True(t, ok)
	assert.False(t, hit.HasKind)
	assert.InDelta(t, 20.0, hit.Location.Z, 1e-9)

	tr.RemoveBody("npc")
	hit, ok = tr.TraceDownward(start, end, "hero")
	require.True(t, ok)
	assert.Equal(t, surface.KindGrass, hit.Kind)
	assert.Zero(t, hit.Location.Z)

	// Без исключения ближе всего собственное тело
	hit, ok = tr.TraceDownward(start, end, "")
	require.True(t, ok)
	assert.False(t, hit.HasKind)
	assert.InDelta(t, 180.0, hit.Location.Z, 1e-9)
}

func TestGeneratedCellsAreConsistent(t *testing.T) {
	a := New(99, 100)
	b := New(99, 100)

	for x := -30; x < 30; x++ {
		for y := -30; y < 30; y++ {
			pos := vec.Vec2{X: x, Y: y}
			cell := a.CellAt(pos)
			assert.Equal(t, cell, b.CellAt(pos), "генерация должна быть детерминированной")
			assert.GreaterOrEqual(t, cell.Height, 0.0)

			switch cell.Kind {
			case surface.KindWater, surface.KindDeepWater:
				assert.Zero(t, cell.Height, "вода всегда на нулевом уровне")
			}
			if cell.Void {
				assert.False(t, cell.HasKind)
			}

			h, ok := a.GroundHeight(pos.Center(a.CellSize, 0))
			assert.Equal(t, !cell.Void, ok)
			if ok {
				assert.Equal(t, cell.Height, h)
			}
		}
	}
}
