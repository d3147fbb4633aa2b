package footstep

import (
	"fmt"

	"github.com/annel0/footstep-fx/internal/logging"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/vec"
)

// Outcome итог одного шага
type Outcome uint8

const (
	OutcomeDispatched  Outcome = iota // хотя бы один эффект отправлен
	OutcomeEmptyBundle                // поверхность найдена, но эффектов для неё нет
	OutcomeNoHit                      // под ногой ничего нет
	OutcomeNoSurface                  // попадание без физического материала
	OutcomeFailed                     // фатальная ошибка настройки
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeEmptyBundle:
		return "empty_bundle"
	case OutcomeNoHit:
		return "no_hit"
	case OutcomeNoSurface:
		return "no_surface"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepReport описывает, что произошло за один шаг
type StepReport struct {
	Actor    ActorID
	Foot     Foot
	Outcome  Outcome
	Kind     surface.Kind
	Fallback bool // для Kind не было записи, использован тип по умолчанию
	Bundle   surface.EffectBundle
	FootAt   vec.Vec3Float
	HitAt    vec.Vec3Float
	Sound    bool
	Decal    bool
	Particle bool
}

// Deps внешние зависимости диспетчера
type Deps struct {
	Owner     ActorID
	Actor     ActorStateProvider
	Skeleton  SkeletalPositionProvider
	World     SpatialQueryEngine
	Registry  *surface.Registry
	Audio     AudioSink
	Decals    DecalSink
	Particles ParticleSink
	Observer  StepObserver
}

// Dispatcher определяет поверхность под ногой персонажа и запускает эффекты шага.
// Один экземпляр на персонажа; не потокобезопасен.
type Dispatcher struct {
	owner       ActorID
	actor       ActorStateProvider
	skeleton    SkeletalPositionProvider
	world       SpatialQueryEngine
	registry    *surface.Registry
	audio       AudioSink
	decals      DecalSink
	particles   ParticleSink
	observer    StepObserver
	cfg         Config
	defaultKind surface.Kind
	next        Foot
	logger      *logging.Logger
}

// NewDispatcher создаёт диспетчер. Отсутствие владельца, меша или мира - фатальная ошибка
// настройки и возвращается сразу, а не на каждом шаге.
func NewDispatcher(deps Deps, cfg Config) (*Dispatcher, error) {
	if deps.Owner == "" || deps.Actor == nil {
		return nil, ErrNoOwner
	}
	if deps.Skeleton == nil {
		return nil, ErrNoMesh
	}
	if deps.World == nil {
		return nil, ErrNoWorld
	}

	logger := logging.GetFootstepLogger()
	cfg = cfg.withDefaults()

	d := &Dispatcher{
		owner:     deps.Owner,
		actor:     deps.Actor,
		skeleton:  deps.Skeleton,
		world:     deps.World,
		registry:  deps.Registry,
		audio:     deps.Audio,
		decals:    deps.Decals,
		particles: deps.Particles,
		observer:  deps.Observer,
		cfg:       cfg,
		next:      cfg.StartFoot,
		logger:    logger,
	}

	if d.audio == nil {
		d.audio = nopAudio{}
	}
	if d.decals == nil {
		d.decals = nopDecals{}
	}
	if d.particles == nil {
		d.particles = nopParticles{}
	}

	d.defaultKind = deps.Registry.DefaultKind()
	if cfg.DefaultKind != nil {
		d.defaultKind = *cfg.DefaultKind
	}

	if deps.Registry.IsEmpty() {
		logger.Warn("⚠️ %s: таблица поверхностей не задана, шаги будут беззвучными", deps.Owner)
	}

	return d, nil
}

// Config возвращает итоговые настройки (с заполненными значениями по умолчанию)
func (d *Dispatcher) Config() Config {
	return d.cfg
}

// NextFoot возвращает ногу, которая будет опрошена при следующем шаге
func (d *Dispatcher) NextFoot() Foot {
	return d.next
}

// SurfaceInfo возвращает набор эффектов для типа поверхности с учётом резервного типа
func (d *Dispatcher) SurfaceInfo(kind surface.Kind) surface.EffectBundle {
	bundle, _ := d.registry.ResolveFrom(kind, d.defaultKind)
	return bundle
}

// LegLocation возвращает мировую позицию сокета ноги, не меняя состояние
func (d *Dispatcher) LegLocation(foot Foot) (vec.Vec3Float, error) {
	socket := d.cfg.RightSocket
	if foot.IsLeft() {
		socket = d.cfg.LeftSocket
	}
	loc, err := d.skeleton.SocketWorldLocation(socket)
	if err != nil {
		return vec.Vec3Float{}, fmt.Errorf("%w: сокет %q владельца %s: %v", ErrConfiguration, socket, d.owner, err)
	}
	return loc, nil
}

// NextLegLocation переключает ногу и возвращает позицию той, что была на очереди
func (d *Dispatcher) NextLegLocation() (Foot, vec.Vec3Float, error) {
	foot := d.next
	d.next = foot.Other()
	loc, err := d.LegLocation(foot)
	return foot, loc, err
}

// OnStep обрабатывает одно касание земли. Нога переключается при любом исходе.
// Ошибка возвращается только при фатальной ошибке настройки (ErrConfiguration);
// отсутствие попадания, материала или эффектов - штатные исходы.
func (d *Dispatcher) OnStep() (StepReport, error) {
	foot, footAt, err := d.NextLegLocation()
	report := StepReport{Actor: d.owner, Foot: foot, FootAt: footAt}
	if err != nil {
		report.Outcome = OutcomeFailed
		d.finish(report)
		return report, err
	}

	start, end := ProbeSegment(footAt, d.cfg.TraceDepth)
	hit, ok := d.world.TraceDownward(start, end, d.owner)
	if !ok {
		report.Outcome = OutcomeNoHit
		d.finish(report)
		return report, nil
	}
	report.HitAt = hit.Location
	if !hit.HasKind {
		report.Outcome = OutcomeNoSurface
		d.finish(report)
		return report, nil
	}

	report.Kind = hit.Kind
	report.Bundle, report.Fallback = d.registry.ResolveFrom(hit.Kind, d.defaultKind)
	if report.Fallback {
		d.logger.Debug("Поверхность %s не описана, используется %s", hit.Kind, d.defaultKind)
	}

	if report.Bundle.HasSound() {
		d.audio.PlayAt(report.Bundle.Sound, d.actor.ActorLocation())
		report.Sound = true
	}
	if report.Bundle.HasDecal() {
		d.decals.SpawnAt(report.Bundle.Decal, d.cfg.DecalSize, hit.Location, DecalRotation(d.actor.ActorRotation()), d.cfg.DecalLifespan)
		report.Decal = true
	}
	if report.Bundle.HasParticle() {
		at := ParticleLocation(hit.Location, d.actor.ForwardVector(), d.actor.Speed(), d.cfg.ParticleSpeedDivisor, d.cfg.ParticleLift)
		d.particles.SpawnAt(report.Bundle.Particle, at)
		report.Particle = true
	}

	if report.Bundle.IsEmpty() {
		report.Outcome = OutcomeEmptyBundle
	} else {
		report.Outcome = OutcomeDispatched
	}
	d.finish(report)
	return report, nil
}

func (d *Dispatcher) finish(report StepReport) {
	logging.LogFootstep(string(report.Actor), report.Foot.String(), report.Outcome.String(), report.Kind.String())
	if d.observer != nil {
		d.observer.ObserveStep(report)
	}
}
