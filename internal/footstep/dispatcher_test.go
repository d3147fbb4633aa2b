package footstep

import (
	"testing"

	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioRegistry() *surface.Registry {
	return surface.NewRegistry(surface.KindDefault,
		surface.Entry{Kind: surface.KindGrass, Bundle: surface.EffectBundle{Sound: "S1", Decal: "D1", Particle: "P1"}},
		surface.Entry{Kind: surface.KindDefault, Bundle: surface.EffectBundle{Sound: "S0"}},
	)
}

type harness struct {
	dispatcher *Dispatcher
	character  *fakeCharacter
	world      *fakeWorld
	rec        *recorder
	observer   *observerRec
}

func newHarness(t *testing.T, world *fakeWorld, registry *surface.Registry, cfg Config) *harness {
	t.Helper()
	h := &harness{
		character: newFakeCharacter(),
		world:     world,
		rec:       &recorder{},
		observer:  &observerRec{},
	}
	d, err := NewDispatcher(Deps{
		Owner:     "hero",
		Actor:     h.character,
		Skeleton:  h.character,
		World:     world,
		Registry:  registry,
		Audio:     audioRec{h.rec},
		Decals:    decalRec{h.rec},
		Particles: particleRec{h.rec},
		Observer:  h.observer,
	}, cfg)
	require.NoError(t, err)
	h.dispatcher = d
	return h
}

func TestGrassScenario(t *testing.T) {
	h := newHarness(t, hitOn(surface.KindGrass, vec.Vec3Float{}), scenarioRegistry(), DefaultConfig())

	report, err := h.dispatcher.OnStep()
	require.NoError(t, err)
	assert.Equal(t, OutcomeDispatched, report.Outcome)
	assert.False(t, report.Fallback)

	require.Len(t, h.rec.sounds, 1)
	assert.Equal(t, soundCall{sound: "S1", at: h.character.location}, h.rec.sounds[0])

	require.Len(t, h.rec.decals, 1)
	dc := h.rec.decals[0]
	assert.Equal(t, "D1", dc.decal)
	assert.Equal(t, DefaultDecalSize, dc.size)
	assert.Equal(t, vec.Vec3Float{}, dc.at)
	assert.Equal(t, vec.Rotator{Pitch: -90, Yaw: 180, Roll: 0}, dc.rotation)
	assert.Equal(t, DefaultDecalLifespan, dc.lifespan)

	require.Len(t, h.rec.particles, 1)
	assert.Equal(t, "P1", h.rec.particles[0].particle)
	assert.True(t, h.rec.particles[0].at.ApproxEqual(vec.Vec3Float{X: 0, Y: 2, Z: 7}, 1e-9),
		"частицы в неожиданной точке: %v", h.rec.particles[0].at)
}

func TestUnmappedSurfaceUsesDefaultBundle(t *testing.T) {
	h := newHarness(t, hitOn(surface.KindWater, vec.Vec3Float{X: 1}), scenarioRegistry(), DefaultConfig())

	report, err := h.dispatcher.OnStep()
	require.NoError(t, err)
	assert.True(t, report.Fallback)
	assert.Equal(t, surface.KindWater, report.Kind)

	require.Len(t, h.rec.sounds, 1)
	assert.Equal(t, "S0", h.rec.sounds[0].sound)
	assert.Empty(t, h.rec.decals)
	assert.Empty(t, h.rec.particles)
}

func TestNoHitIsSilentButToggles(t *testing.T) {
	h := newHarness(t, &fakeWorld{}, scenarioRegistry(), DefaultConfig())
	before := h.dispatcher.NextFoot()

	report, err := h.dispatcher.OnStep()
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoHit, report.Outcome)
	assert.Zero(t, h.rec.total())
	assert.Equal(t, before.Other(), h.dispatcher.NextFoot())
}

func TestHitWithoutMaterialIsSilent(t *testing.T) {
	world := &fakeWorld{hit: Hit{Location: vec.Vec3Float{Z: -3}}, found: true}
	h := newHarness(t, world, scenarioRegistry(), DefaultConfig())

	report, err := h.dispatcher.OnStep()
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSurface, report.Outcome)
	assert.Zero(t, h.rec.total())
}

func TestEmptyRegistryDispatchesNothing(t *testing.T) {
	for name, registry := range map[string]*surface.Registry{
		"nil":   nil,
		"empty": surface.NewRegistry(surface.KindDefault),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, hitOn(surface.KindGrass, vec.Vec3Float{}), registry, DefaultConfig())
			report, err := h.dispatcher.OnStep()
			require.NoError(t, err)
			assert.Equal(t, OutcomeEmptyBundle, report.Outcome)
			assert.Zero(t, h.rec.total())
		})
	}
}

func TestEffectsDispatchIndependently(t *testing.T) {
	registry := surface.NewRegistry(surface.KindDefault,
		surface.Entry{Kind: surface.KindSand, Bundle: surface.EffectBundle{Particle: "sand"}},
	)
	h := newHarness(t, hitOn(surface.KindSand, vec.Vec3Float{}), registry, DefaultConfig())

	report, err := h.dispatcher.OnStep()
	require.NoError(t, err)
	assert.False(t, report.Sound)
	assert.False(t, report.Decal)
	assert.True(t, report.Particle)
	assert.Len(t, h.rec.particles, 1)
	assert.Empty(t, h.rec.sounds)
	assert.Empty(t, h.rec.decals)
}

func TestAlternation(t *testing.T) {
	for _, start := range []Foot{LeftPending, RightPending} {
		for _, n := range []int{1, 2, 7, 10} {
			cfg := DefaultConfig()
			cfg.StartFoot = start
			h := newHarness(t, &fakeWorld{}, scenarioRegistry(), cfg)

			lefts := 0
			prev := Foot(255)
			for i := 0; i < n; i++ {
				report, err := h.dispatcher.OnStep()
				require.NoError(t, err)
				assert.NotEqual(t, prev, report.Foot, "нога повторилась на шаге %d", i)
				prev = report.Foot
				if report.Foot.IsLeft() {
					lefts++
				}
			}

			want := n / 2
			if start == LeftPending {
				want = (n + 1) / 2
			}
			assert.Equal(t, want, lefts, "start=%s n=%d", start, n)
		}
	}
}

func TestSocketSelectionAndProbe(t *testing.T) {
	world := &fakeWorld{}
	h := newHarness(t, world, scenarioRegistry(), DefaultConfig())

	_, _ = h.dispatcher.OnStep()
	_, _ = h.dispatcher.OnStep()

	// По умолчанию первым опрашивается правый сокет
	assert.Equal(t, []string{DefaultRightSocket, DefaultLeftSocket}, h.character.queried)

	require.Len(t, world.calls, 2)
	call := world.calls[0]
	assert.Equal(t, h.character.sockets[DefaultRightSocket], call.start)
	assert.Equal(t, vec.Vec3Float{X: 15, Y: 20, Z: 2 - DefaultTraceDepth}, call.end)
	assert.Equal(t, ActorID("hero"), call.exclude)
}

func TestMissingSocketIsFatalButStillToggles(t *testing.T) {
	h := newHarness(t, hitOn(surface.KindGrass, vec.Vec3Float{}), scenarioRegistry(), DefaultConfig())
	delete(h.character.sockets, DefaultRightSocket)

	report, err := h.dispatcher.OnStep()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Zero(t, h.rec.total())
	assert.Equal(t, LeftPending, h.dispatcher.NextFoot())

	// Левая нога в порядке
	report, err = h.dispatcher.OnStep()
	require.NoError(t, err)
	assert.Equal(t, OutcomeDispatched, report.Outcome)
}

func TestObserverReceivesEveryStep(t *testing.T) {
	h := newHarness(t, hitOn(surface.KindGrass, vec.Vec3Float{}), scenarioRegistry(), DefaultConfig())

	for i := 0; i < 3; i++ {
		_, err := h.dispatcher.OnStep()
		require.NoError(t, err)
	}
	require.Len(t, h.observer.reports, 3)
	assert.Equal(t, ActorID("hero"), h.observer.reports[0].Actor)
	assert.Equal(t, surface.KindGrass, h.observer.reports[2].Kind)
}

func TestConfigDefaultKindOverride(t *testing.T) {
	registry := surface.NewRegistry(surface.KindDefault,
		surface.Entry{Kind: surface.KindDefault, Bundle: surface.EffectBundle{Sound: "S0"}},
		surface.Entry{Kind: surface.KindStone, Bundle: surface.EffectBundle{Sound: "stone"}},
	)
	stone := surface.KindStone
	cfg := DefaultConfig()
	cfg.DefaultKind = &stone

	h := newHarness(t, hitOn(surface.KindMud, vec.Vec3Float{}), registry, cfg)
	assert.Equal(t, "stone", h.dispatcher.SurfaceInfo(surface.KindMud).Sound)

	_, err := h.dispatcher.OnStep()
	require.NoError(t, err)
	require.Len(t, h.rec.sounds, 1)
	assert.Equal(t, "stone", h.rec.sounds[0].sound)
}

func TestNewDispatcherRequiresOwner(t *testing.T) {
	c := newFakeCharacter()
	world := &fakeWorld{}

	_, err := NewDispatcher(Deps{Actor: c, Skeleton: c, World: world}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoOwner)

	_, err = NewDispatcher(Deps{Owner: "x", Skeleton: c, World: world}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoOwner)

	_, err = NewDispatcher(Deps{Owner: "x", Actor: c, World: world}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoMesh)

	_, err = NewDispatcher(Deps{Owner: "x", Actor: c, Skeleton: c}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoWorld)
}

func TestNilSinksAreNoops(t *testing.T) {
	c := newFakeCharacter()
	d, err := NewDispatcher(Deps{
		Owner:    "x",
		Actor:    c,
		Skeleton: c,
		World:    hitOn(surface.KindGrass, vec.Vec3Float{}),
		Registry: scenarioRegistry(),
	}, Config{})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		report, err := d.OnStep()
		assert.NoError(t, err)
		assert.Equal(t, OutcomeDispatched, report.Outcome)
	})

	// Пустой Config дополняется значениями по умолчанию
	cfg := d.Config()
	assert.Equal(t, DefaultLeftSocket, cfg.LeftSocket)
	assert.Equal(t, DefaultDecalSize, cfg.DecalSize)
	assert.Equal(t, DefaultTraceDepth, cfg.TraceDepth)
	assert.Equal(t, DefaultParticleLift, cfg.ParticleLift)
	assert.Equal(t, LeftPending, cfg.StartFoot)
}

func TestZeroConfigLiftsParticles(t *testing.T) {
	h := newHarness(t, hitOn(surface.KindGrass, vec.Vec3Float{}), scenarioRegistry(), Config{})

	_, err := h.dispatcher.OnStep()
	require.NoError(t, err)

	require.Len(t, h.rec.particles, 1)
	assert.True(t, h.rec.particles[0].at.ApproxEqual(vec.Vec3Float{X: 0, Y: 2, Z: DefaultParticleLift}, 1e-9),
		"частицы должны подниматься над точкой попадания: %v", h.rec.particles[0].at)
}
