package footstep

import (
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/vec"
)

// ActorID идентифицирует персонажа-владельца; используется для исключения его из трассировки
type ActorID string

// SkeletalPositionProvider отдаёт мировые координаты сокетов скелета владельца.
// Ошибка означает, что у владельца нет меша или сокета: это ошибка настройки, а не игровая ситуация.
type SkeletalPositionProvider interface {
	SocketWorldLocation(socket string) (vec.Vec3Float, error)
}

// ActorStateProvider отдаёт текущее состояние владельца
type ActorStateProvider interface {
	ActorLocation() vec.Vec3Float
	ActorRotation() vec.Rotator
	ForwardVector() vec.Vec3Float
	Speed() float64
}

// Hit результат трассировки вниз
type Hit struct {
	Location vec.Vec3Float
	Kind     surface.Kind
	HasKind  bool // false - у поверхности нет физического материала
}

// SpatialQueryEngine выполняет трассировку отрезка и возвращает ближайшее попадание,
// игнорируя актора exclude.
type SpatialQueryEngine interface {
	TraceDownward(start, end vec.Vec3Float, exclude ActorID) (Hit, bool)
}

// AudioSink проигрывает звук в точке
type AudioSink interface {
	PlayAt(sound string, location vec.Vec3Float)
}

// DecalSink создаёт декаль
type DecalSink interface {
	SpawnAt(decal string, size, location vec.Vec3Float, rotation vec.Rotator, lifespan float64)
}

// ParticleSink запускает систему частиц
type ParticleSink interface {
	SpawnAt(particle string, location vec.Vec3Float)
}

// StepObserver получает отчёт о каждом шаге (метрики, отладка)
type StepObserver interface {
	ObserveStep(report StepReport)
}

type nopAudio struct{}

func (nopAudio) PlayAt(string, vec.Vec3Float) {}

type nopDecals struct{}

func (nopDecals) SpawnAt(string, vec.Vec3Float, vec.Vec3Float, vec.Rotator, float64) {}

type nopParticles struct{}

func (nopParticles) SpawnAt(string, vec.Vec3Float) {}
