package vec

import "math"

// Vec2 представляет 2D координаты клетки сетки
type Vec2 struct {
	X, Y int
}

// Add складывает две клетки
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Center возвращает мировой центр клетки на высоте z
func (v Vec2) Center(cellSize, z float64) Vec3Float {
	return Vec3Float{
		X: (float64(v.X) + 0.5) * cellSize,
		Y: (float64(v.Y) + 0.5) * cellSize,
		Z: z,
	}
}

// DistanceTo вычисляет расстояние до другой клетки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
