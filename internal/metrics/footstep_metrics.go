// Package metrics экспортирует статистику шагов в Prometheus.
//
// Метрики:
//   - footstep_steps_total{foot,outcome}: counter
//   - footstep_effects_total{kind,effect}: counter (sound/decal/particle)
//   - footstep_fallbacks_total{kind}: counter, шаги по типу без собственной записи
//
// Кроме того ведётся сводка в памяти для /api/stats.
package metrics

import (
	"sync"

	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/prometheus/client_golang/prometheus"
)

// Summary агрегированная статистика шагов
type Summary struct {
	Steps     uint64            `json:"steps"`
	Outcomes  map[string]uint64 `json:"outcomes"`
	Kinds     map[string]uint64 `json:"kinds"`
	Fallbacks uint64            `json:"fallbacks"`
	Sounds    uint64            `json:"sounds"`
	Decals    uint64            `json:"decals"`
	Particles uint64            `json:"particles"`
}

// FootstepMetrics реализует footstep.StepObserver.
// Безопасен для одновременного использования несколькими диспетчерами.
type FootstepMetrics struct {
	steps     *prometheus.CounterVec
	effects   *prometheus.CounterVec
	fallbacks *prometheus.CounterVec

	mu      sync.Mutex
	summary Summary
}

// NewFootstepMetrics создаёт метрики и регистрирует их в reg.
// reg == nil означает глобальный регистр Prometheus.
func NewFootstepMetrics(reg prometheus.Registerer) (*FootstepMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	fm := &FootstepMetrics{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "footstep",
			Name:      "steps_total",
			Help:      "Количество обработанных шагов.",
		}, []string{"foot", "outcome"}),
		effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "footstep",
			Name:      "effects_total",
			Help:      "Количество запущенных эффектов по типу поверхности.",
		}, []string{"kind", "effect"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "footstep",
			Name:      "fallbacks_total",
			Help:      "Шаги по поверхностям без собственной записи в таблице.",
		}, []string{"kind"}),
		summary: newSummary(),
	}

	for _, c := range []prometheus.Collector{fm.steps, fm.effects, fm.fallbacks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return fm, nil
}

func newSummary() Summary {
	return Summary{Outcomes: make(map[string]uint64), Kinds: make(map[string]uint64)}
}

// ObserveStep учитывает отчёт о шаге
func (fm *FootstepMetrics) ObserveStep(report footstep.StepReport) {
	outcome := report.Outcome.String()
	fm.steps.WithLabelValues(report.Foot.String(), outcome).Inc()

	surfaceKnown := report.Outcome == footstep.OutcomeDispatched || report.Outcome == footstep.OutcomeEmptyBundle
	kind := report.Kind.String()
	if report.Fallback && surfaceKnown {
		fm.fallbacks.WithLabelValues(kind).Inc()
	}
	if report.Sound {
		fm.effects.WithLabelValues(kind, "sound").Inc()
	}
	if report.Decal {
		fm.effects.WithLabelValues(kind, "decal").Inc()
	}
	if report.Particle {
		fm.effects.WithLabelValues(kind, "particle").Inc()
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.summary.Steps++
	fm.summary.Outcomes[outcome]++
	if surfaceKnown {
		fm.summary.Kinds[kind]++
		if report.Fallback {
			fm.summary.Fallbacks++
		}
	}
	if report.Sound {
		fm.summary.Sounds++
	}
	if report.Decal {
		fm.summary.Decals++
	}
	if report.Particle {
		fm.summary.Particles++
	}
}

// Summary возвращает копию сводки
func (fm *FootstepMetrics) Summary() Summary {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	out := fm.summary
	out.Outcomes = make(map[string]uint64, len(fm.summary.Outcomes))
	for k, v := range fm.summary.Outcomes {
		out.Outcomes[k] = v
	}
	out.Kinds = make(map[string]uint64, len(fm.summary.Kinds))
	for k, v := range fm.summary.Kinds {
		out.Kinds[k] = v
	}
	return out
}

// Fanout рассылает отчёт нескольким наблюдателям (метрики + шина событий)
type Fanout []footstep.StepObserver

// ObserveStep передаёт отчёт каждому ненулевому наблюдателю
func (f Fanout) ObserveStep(report footstep.StepReport) {
	for _, o := range f {
		if o != nil {
			o.ObserveStep(report)
		}
	}
}
