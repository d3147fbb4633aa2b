package eventbus

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector собирает события подписки
type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) snapshot() []*Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Envelope(nil), c.events...)
}

func (c *collector) byType(eventType string) []*Envelope {
	var out []*Envelope
	for _, ev := range c.snapshot() {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func TestMemoryBusFilters(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var all, sounds collector
	_, err := bus.Subscribe(context.Background(), Filter{}, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{EventFootstepSound}}, sounds.handle)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, NewEnvelope("test", EventFootstepSound, nil)))
	require.NoError(t, bus.Publish(ctx, NewEnvelope("test", EventFootstepDecal, nil)))
	require.NoError(t, bus.Close())

	assert.Len(t, all.snapshot(), 2)
	assert.Len(t, sounds.snapshot(), 1)

	stats := bus.Metrics()
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(3), stats.Consumed)
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)

	var c collector
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("test", EventFootstepStep, nil)))
	require.NoError(t, bus.Close())
	assert.Empty(t, c.snapshot())
}

func TestMemoryBusBackpressure(t *testing.T) {
	// Шина без цикла доставки: буфер на одно событие остаётся занятым
	bus := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, 1),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ev := NewEnvelope("test", EventFootstepSound, nil)
		ev.Priority = effectPriority
		require.NoError(t, bus.Publish(ctx, ev))
	}
	stats := bus.Metrics()
	assert.Equal(t, uint64(1), stats.Published)
	assert.Equal(t, uint64(2), stats.Dropped)
	assert.Equal(t, 1, stats.InFlight)

	// Высокий приоритет ждёт места и уважает отмену контекста
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	urgent := NewEnvelope("test", EventFootstepStep, nil)
	urgent.Priority = 9
	assert.ErrorIs(t, bus.Publish(cancelled, urgent), context.Canceled)
}

func TestMemoryBusClosed(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), NewEnvelope("test", "x", nil)), ErrBusClosed)
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestEffectPublisherSinks(t *testing.T) {
	bus := NewMemoryBus(32)
	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	pub := NewEffectPublisher(bus, "footstep-sim", "hero")
	hit := vec.Vec3Float{X: 1, Y: 2}
	pub.Audio().PlayAt("sfx/grass", vec.Vec3Float{Z: 90})
	pub.Decals().SpawnAt("decal/print", footstep.DefaultDecalSize, hit, vec.Rotator{Pitch: -90, Yaw: 180}, 10)
	pub.Particles().SpawnAt("fx/dust", hit.Add(vec.Vec3Float{Z: 7}))
	pub.ObserveStep(footstep.StepReport{
		Actor:   "hero",
		Foot:    footstep.LeftPending,
		Outcome: footstep.OutcomeDispatched,
		Kind:    surface.KindGrass,
		HitAt:   hit,
	})
	pub.Audio().PlayAt("sfx/grass", vec.Vec3Float{})
	require.NoError(t, bus.Close())

	// Доставка асинхронная: первый звук отличаем по точке
	sounds := c.byType(EventFootstepSound)
	require.Len(t, sounds, 2)
	var first, second *Envelope
	var sound SoundPayload
	for _, ev := range sounds {
		var p SoundPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &p))
		if p.Location.Z == 90 {
			first, sound = ev, p
		} else {
			second = ev
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, SoundPayload{Actor: "hero", Sound: "sfx/grass", Location: vec.Vec3Float{Z: 90}}, sound)
	assert.Equal(t, "hero", first.Metadata["actor"])
	assert.Equal(t, "footstep-sim", first.Source)

	decals := c.byType(EventFootstepDecal)
	require.Len(t, decals, 1)
	var decal DecalPayload
	require.NoError(t, json.Unmarshal(decals[0].Payload, &decal))
	assert.Equal(t, "decal/print", decal.Decal)
	assert.Equal(t, footstep.DefaultDecalSize, decal.Size)
	assert.Equal(t, vec.Rotator{Pitch: -90, Yaw: 180}, decal.Rotation)
	assert.Equal(t, 10.0, decal.Lifespan)

	particles := c.byType(EventFootstepParticle)
	require.Len(t, particles, 1)
	var particle ParticlePayload
	require.NoError(t, json.Unmarshal(particles[0].Payload, &particle))
	assert.Equal(t, vec.Vec3Float{X: 1, Y: 2, Z: 7}, particle.Location)

	steps := c.byType(EventFootstepStep)
	require.Len(t, steps, 1)
	var step StepPayload
	require.NoError(t, json.Unmarshal(steps[0].Payload, &step))
	assert.Equal(t, footstep.LeftPending, step.Foot)
	assert.Equal(t, "dispatched", step.Outcome)
	assert.Equal(t, surface.KindGrass, step.Kind)

	// Эффекты одного шага связаны общей корреляцией, следующий шаг получает новую
	assert.Equal(t, first.CorrelationID, decals[0].CorrelationID)
	assert.Equal(t, first.CorrelationID, steps[0].CorrelationID)
	assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
}

func TestEffectPublisherSwallowsBusErrors(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())

	pub := NewEffectPublisher(bus, "test", "hero")
	assert.NotPanics(t, func() {
		pub.Audio().PlayAt("sfx", vec.Vec3Float{})
		pub.ObserveStep(footstep.StepReport{})
	})
}

func TestLoggingListener(t *testing.T) {
	bus := NewMemoryBus(4)
	sub, err := StartLoggingListener(bus)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	pub := NewEffectPublisher(bus, "test", "hero")
	pub.ObserveStep(footstep.StepReport{Actor: "hero", Outcome: footstep.OutcomeNoHit})
	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: EventFootstepStep, Payload: []byte("{")}))
	require.NoError(t, bus.Close())

	assert.Equal(t, uint64(2), bus.Metrics().Consumed)
}

func TestMetricsExporterSync(t *testing.T) {
	bus := NewMemoryBus(8)
	reg := prometheus.NewRegistry()
	exporter, err := NewMetricsExporter(bus, reg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, NewEnvelope("test", EventFootstepSound, nil)))
	require.NoError(t, bus.Publish(ctx, NewEnvelope("test", EventFootstepDecal, nil)))
	exporter.Sync()
	exporter.Sync()
	assert.Equal(t, 2.0, testutil.ToFloat64(exporter.published))

	exporter.Start(10 * time.Millisecond)
	require.NoError(t, bus.Publish(ctx, NewEnvelope("test", EventFootstepStep, nil)))
	require.NoError(t, bus.Close())
	exporter.Stop()
	assert.Equal(t, 3.0, testutil.ToFloat64(exporter.published))
	assert.Equal(t, 0.0, testutil.ToFloat64(exporter.inflight))

	_, err = NewMetricsExporter(bus, reg)
	assert.Error(t, err, "повторная регистрация должна вернуть ошибку")
}
