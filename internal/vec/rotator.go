package vec

import "math"

// Rotator задаёт ориентацию в градусах: Pitch вокруг Y, Yaw вокруг Z, Roll вокруг X.
type Rotator struct {
	Pitch float64 `json:"pitch" yaml:"pitch"`
	Yaw   float64 `json:"yaw" yaml:"yaw"`
	Roll  float64 `json:"roll" yaml:"roll"`
}

// Add складывает углы покомпонентно (без нормализации)
func (r Rotator) Add(other Rotator) Rotator {
	return Rotator{Pitch: r.Pitch + other.Pitch, Yaw: r.Yaw + other.Yaw, Roll: r.Roll + other.Roll}
}

// Forward возвращает единичный вектор направления взгляда.
// Yaw=0 смотрит вдоль +X, Yaw=90 вдоль +Y.
func (r Rotator) Forward() Vec3Float {
	pitch := r.Pitch * math.Pi / 180
	yaw := r.Yaw * math.Pi / 180
	cp := math.Cos(pitch)
	return Vec3Float{
		X: cp * math.Cos(yaw),
		Y: cp * math.Sin(yaw),
		Z: math.Sin(pitch),
	}
}

// Normalized приводит углы к диапазону (-180, 180]
func (r Rotator) Normalized() Rotator {
	return Rotator{Pitch: normalizeAxis(r.Pitch), Yaw: normalizeAxis(r.Yaw), Roll: normalizeAxis(r.Roll)}
}

func normalizeAxis(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle > 180 {
		angle -= 360
	} else if angle <= -180 {
		angle += 360
	}
	return angle
}
