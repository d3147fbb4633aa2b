package eventbus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/logging"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/vec"
	"github.com/google/uuid"
)

// Типы событий шагов
const (
	EventFootstepSound    = "FootstepSound"
	EventFootstepDecal    = "FootstepDecal"
	EventFootstepParticle = "FootstepParticle"
	EventFootstepStep     = "FootstepStep"
)

// Эффекты косметические: при переполнении шины их можно терять
const (
	effectPriority = 2
	stepPriority   = 4
)

// SoundPayload звук шага
type SoundPayload struct {
	Actor    footstep.ActorID `json:"actor"`
	Sound    string           `json:"sound"`
	Location vec.Vec3Float    `json:"location"`
}

// DecalPayload след на поверхности
type DecalPayload struct {
	Actor    footstep.ActorID `json:"actor"`
	Decal    string           `json:"decal"`
	Size     vec.Vec3Float    `json:"size"`
	Location vec.Vec3Float    `json:"location"`
	Rotation vec.Rotator      `json:"rotation"`
	Lifespan float64          `json:"lifespan"`
}

// ParticlePayload всплеск частиц
type ParticlePayload struct {
	Actor    footstep.ActorID `json:"actor"`
	Particle string           `json:"particle"`
	Location vec.Vec3Float    `json:"location"`
}

// StepPayload итог шага
type StepPayload struct {
	Actor    footstep.ActorID `json:"actor"`
	Foot     footstep.Foot    `json:"foot"`
	Outcome  string           `json:"outcome"`
	Kind     surface.Kind     `json:"kind"`
	Fallback bool             `json:"fallback"`
	FootAt   vec.Vec3Float    `json:"foot_at"`
	HitAt    vec.Vec3Float    `json:"hit_at"`
}

// EffectPublisher превращает эффекты шагов одного персонажа в события шины.
// Все эффекты одного шага получают общий CorrelationID; он меняется после ObserveStep.
// Ошибки публикации только логируются: шаг не должен ломаться из-за шины.
type EffectPublisher struct {
	bus     EventBus
	source  string
	actor   footstep.ActorID
	timeout time.Duration
	log     *logging.Logger

	mu          sync.Mutex
	correlation string
}

// NewEffectPublisher создаёт издателя эффектов для персонажа actor
func NewEffectPublisher(bus EventBus, source string, actor footstep.ActorID) *EffectPublisher {
	return &EffectPublisher{
		bus:         bus,
		source:      source,
		actor:       actor,
		timeout:     time.Second,
		log:         logging.GetEventBusLogger(),
		correlation: uuid.NewString(),
	}
}

// Audio возвращает AudioSink, публикующий FootstepSound
func (p *EffectPublisher) Audio() footstep.AudioSink { return audioSink{p} }

// Decals возвращает DecalSink, публикующий FootstepDecal
func (p *EffectPublisher) Decals() footstep.DecalSink { return decalSink{p} }

// Particles возвращает ParticleSink, публикующий FootstepParticle
func (p *EffectPublisher) Particles() footstep.ParticleSink { return particleSink{p} }

// ObserveStep публикует FootstepStep и начинает новую корреляцию
func (p *EffectPublisher) ObserveStep(report footstep.StepReport) {
	p.publish(EventFootstepStep, stepPriority, StepPayload{
		Actor:    report.Actor,
		Foot:     report.Foot,
		Outcome:  report.Outcome.String(),
		Kind:     report.Kind,
		Fallback: report.Fallback,
		FootAt:   report.FootAt,
		HitAt:    report.HitAt,
	})

	p.mu.Lock()
	p.correlation = uuid.NewString()
	p.mu.Unlock()
}

func (p *EffectPublisher) publish(eventType string, priority int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("❌ Не удалось сериализовать %s: %v", eventType, err)
		return
	}

	ev := NewEnvelope(p.source, eventType, data)
	ev.Priority = priority
	ev.Metadata = map[string]string{"actor": string(p.actor)}
	p.mu.Lock()
	ev.CorrelationID = p.correlation
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.bus.Publish(ctx, ev); err != nil {
		p.log.Warn("⚠️ Событие %s не опубликовано: %v", eventType, err)
	}
}

type audioSink struct{ p *EffectPublisher }

func (s audioSink) PlayAt(sound string, location vec.Vec3Float) {
	s.p.publish(EventFootstepSound, effectPriority, SoundPayload{Actor: s.p.actor, Sound: sound, Location: location})
}

type decalSink struct{ p *EffectPublisher }

func (s decalSink) SpawnAt(decal string, size, location vec.Vec3Float, rotation vec.Rotator, lifespan float64) {
	s.p.publish(EventFootstepDecal, effectPriority, DecalPayload{
		Actor:    s.p.actor,
		Decal:    decal,
		Size:     size,
		Location: location,
		Rotation: rotation,
		Lifespan: lifespan,
	})
}

type particleSink struct{ p *EffectPublisher }

func (s particleSink) SpawnAt(particle string, location vec.Vec3Float) {
	s.p.publish(EventFootstepParticle, effectPriority, ParticlePayload{Actor: s.p.actor, Particle: particle, Location: location})
}
