package metrics

import (
	"testing"

	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *FootstepMetrics {
	t.Helper()
	fm, err := NewFootstepMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return fm
}

func TestObserveDispatchedStep(t *testing.T) {
	fm := newTestMetrics(t)

	fm.ObserveStep(footstep.StepReport{
		Foot:     footstep.LeftPending,
		Outcome:  footstep.OutcomeDispatched,
		Kind:     surface.KindGrass,
		Sound:    true,
		Decal:    true,
		Particle: true,
	})
	fm.ObserveStep(footstep.StepReport{
		Foot:     footstep.RightPending,
		Outcome:  footstep.OutcomeDispatched,
		Kind:     surface.KindWater,
		Fallback: true,
		Sound:    true,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(fm.steps.WithLabelValues("left", "dispatched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fm.steps.WithLabelValues("right", "dispatched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fm.effects.WithLabelValues("grass", "decal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fm.effects.WithLabelValues("water", "sound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fm.fallbacks.WithLabelValues("water")))

	s := fm.Summary()
	assert.Equal(t, uint64(2), s.Steps)
	assert.Equal(t, uint64(2), s.Sounds)
	assert.Equal(t, uint64(1), s.Decals)
	assert.Equal(t, uint64(1), s.Fallbacks)
	assert.Equal(t, map[string]uint64{"grass": 1, "water": 1}, s.Kinds)
}

func TestObserveMissIgnoresKind(t *testing.T) {
	fm := newTestMetrics(t)

	fm.ObserveStep(footstep.StepReport{Foot: footstep.LeftPending, Outcome: footstep.OutcomeNoHit})
	fm.ObserveStep(footstep.StepReport{Foot: footstep.RightPending, Outcome: footstep.OutcomeNoSurface})

	s := fm.Summary()
	assert.Equal(t, uint64(2), s.Steps)
	assert.Empty(t, s.Kinds)
	assert.Equal(t, map[string]uint64{"no_hit": 1, "no_surface": 1}, s.Outcomes)
	assert.Equal(t, 0, testutil.CollectAndCount(fm.fallbacks))
}

func TestSummaryIsCopy(t *testing.T) {
	fm := newTestMetrics(t)
	fm.ObserveStep(footstep.StepReport{Outcome: footstep.OutcomeEmptyBundle, Kind: surface.KindStone})

	s := fm.Summary()
	s.Kinds["stone"] = 100
	assert.Equal(t, uint64(1), fm.Summary().Kinds["stone"])
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewFootstepMetrics(reg)
	require.NoError(t, err)
	_, err = NewFootstepMetrics(reg)
	assert.Error(t, err)
}

type countingObserver struct{ n int }

func (c *countingObserver) ObserveStep(footstep.StepReport) { c.n++ }

func TestFanout(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	f := Fanout{a, nil, b}
	f.ObserveStep(footstep.StepReport{})
	f.ObserveStep(footstep.StepReport{})
	assert.Equal(t, 2, a.n)
	assert.Equal(t, 2, b.n)
}
