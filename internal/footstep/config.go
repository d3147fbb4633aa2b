package footstep

import (
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/vec"
)

// Константы размещения эффектов. Подобраны под исходные ассеты и не выводятся из физики.
const (
	// DecalPitchOffset и DecalYawOffset укладывают вертикально нарисованную декаль на землю
	// по направлению взгляда персонажа.
	DecalPitchOffset = -90.0
	DecalYawOffset   = 90.0

	DefaultTraceDepth           = 5000.0
	DefaultParticleSpeedDivisor = 3.0
	DefaultParticleLift         = 7.0
	DefaultDecalLifespan        = 10.0

	DefaultLeftSocket  = "foot_l"
	DefaultRightSocket = "foot_r"
)

// DefaultDecalSize размер следа по умолчанию
var DefaultDecalSize = vec.Vec3Float{X: 200, Y: 32, Z: 6}

// Config настройки диспетчера шагов одного персонажа.
// Задаются при создании и не меняются во время игры.
type Config struct {
	LeftSocket    string        `yaml:"left_socket"`
	RightSocket   string        `yaml:"right_socket"`
	DecalSize     vec.Vec3Float `yaml:"decal_size"`
	DecalLifespan float64       `yaml:"decal_lifespan"`
	// DefaultKind переопределяет тип по умолчанию реестра; nil - взять из реестра
	DefaultKind *surface.Kind `yaml:"default_kind,omitempty"`
	// TraceDepth насколько ниже стопы заканчивается зондирующий отрезок
	TraceDepth           float64 `yaml:"trace_depth"`
	ParticleSpeedDivisor float64 `yaml:"particle_speed_divisor"`
	ParticleLift         float64 `yaml:"particle_lift"`
	// StartFoot какая нога опрашивается первой
	StartFoot Foot `yaml:"start_foot"`
}

// DefaultConfig возвращает настройки по умолчанию.
// Первым опрашивается правый сокет.
func DefaultConfig() Config {
	return Config{
		LeftSocket:           DefaultLeftSocket,
		RightSocket:          DefaultRightSocket,
		DecalSize:            DefaultDecalSize,
		DecalLifespan:        DefaultDecalLifespan,
		TraceDepth:           DefaultTraceDepth,
		ParticleSpeedDivisor: DefaultParticleSpeedDivisor,
		ParticleLift:         DefaultParticleLift,
		StartFoot:            RightPending,
	}
}

// withDefaults заполняет незаданные поля, для которых ноль не имеет смысла
func (c Config) withDefaults() Config {
	if c.LeftSocket == "" {
		c.LeftSocket = DefaultLeftSocket
	}
	if c.RightSocket == "" {
		c.RightSocket = DefaultRightSocket
	}
	if c.DecalSize == (vec.Vec3Float{}) {
		c.DecalSize = DefaultDecalSize
	}
	if c.DecalLifespan <= 0 {
		c.DecalLifespan = DefaultDecalLifespan
	}
	if c.TraceDepth <= 0 {
		c.TraceDepth = DefaultTraceDepth
	}
	if c.ParticleSpeedDivisor <= 0 {
		c.ParticleSpeedDivisor = DefaultParticleSpeedDivisor
	}
	// Частицы без подъёма утопают в земле; отрицательный подъём допустим
	if c.ParticleLift == 0 {
		c.ParticleLift = DefaultParticleLift
	}
	return c
}
