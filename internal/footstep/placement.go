package footstep

import "github.com/annel0/footstep-fx/internal/vec"

// ProbeSegment строит отрезок от стопы вертикально вниз на depth единиц
func ProbeSegment(foot vec.Vec3Float, depth float64) (start, end vec.Vec3Float) {
	return foot, foot.WithZ(foot.Z - depth)
}

// DecalRotation разворачивает декаль так, чтобы она лежала на земле по направлению взгляда
func DecalRotation(actor vec.Rotator) vec.Rotator {
	actor.Pitch += DecalPitchOffset
	actor.Yaw += DecalYawOffset
	return actor
}

// ParticleLocation смещает точку частиц вперёд по ходу движения пропорционально скорости
// (вертикальная составляющая смещения обнуляется) и приподнимает над землёй на lift.
func ParticleLocation(hit, forward vec.Vec3Float, speed, divisor, lift float64) vec.Vec3Float {
	if divisor <= 0 {
		divisor = DefaultParticleSpeedDivisor
	}
	offset := forward.Mul(speed / divisor).Flat()
	return hit.Add(offset).Add(vec.Vec3Float{Z: lift})
}
