package vec

import "math"

// Vec3Float представляет трехмерный вектор с плавающими координатами.
// Ось Z направлена вверх.
type Vec3Float struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Up единичный вектор вверх
var Up = Vec3Float{Z: 1}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec3Float) Sub(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3Float) Mul(scalar float64) Vec3Float {
	return Vec3Float{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Length возвращает длину вектора
func (v Vec3Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized возвращает нормализованный вектор
func (v Vec3Float) Normalized() Vec3Float {
	length := v.Length()
	if length == 0 {
		return Vec3Float{}
	}
	return Vec3Float{X: v.X / length, Y: v.Y / length, Z: v.Z / length}
}

// Flat обнуляет вертикальную составляющую
func (v Vec3Float) Flat() Vec3Float {
	return Vec3Float{X: v.X, Y: v.Y}
}

// WithZ возвращает копию вектора с заменённой координатой Z
func (v Vec3Float) WithZ(z float64) Vec3Float {
	return Vec3Float{X: v.X, Y: v.Y, Z: z}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	return v.Sub(other).Length()
}

// ToVec2 возвращает клетку сетки, в которую попадает точка (проекция на XY)
func (v Vec3Float) ToVec2(cellSize float64) Vec2 {
	if cellSize <= 0 {
		cellSize = 1
	}
	return Vec2{X: int(math.Floor(v.X / cellSize)), Y: int(math.Floor(v.Y / cellSize))}
}

// ApproxEqual сравнивает векторы с допуском eps
func (v Vec3Float) ApproxEqual(other Vec3Float, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps &&
		math.Abs(v.Y-other.Y) <= eps &&
		math.Abs(v.Z-other.Z) <= eps
}
