// Package sim водит персонажей по процедурной поверхности и вызывает диспетчер шагов
// каждый раз, когда персонаж проходит длину шага.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/footstep-fx/internal/entity"
	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/logging"
	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/terrain"
	"github.com/annel0/footstep-fx/internal/vec"
)

// Размеры тела персонажа для трассировок других персонажей
const (
	BodyRadius = 30.0
	BodyHeight = 180.0
)

// ErrStalled персонажи не набрали нужное число шагов за отведённое время
var ErrStalled = errors.New("simulation stalled")

// Effects приёмники эффектов одного персонажа
type Effects struct {
	Audio     footstep.AudioSink
	Decals    footstep.DecalSink
	Particles footstep.ParticleSink
	Observer  footstep.StepObserver
}

// EffectsFactory создаёт приёмники для нового персонажа
type EffectsFactory func(id footstep.ActorID) Effects

// Options параметры симуляции
type Options struct {
	Seed     int64
	Speed    float64       // скорость ходьбы
	Stride   float64       // расстояние между шагами
	Tick     time.Duration // шаг игрового времени
	Footstep footstep.Config
}

func (o Options) withDefaults() Options {
	if o.Speed <= 0 {
		o.Speed = 300
	}
	if o.Stride <= 0 {
		o.Stride = 120
	}
	if o.Tick <= 0 {
		o.Tick = 20 * time.Millisecond
	}
	if o.Footstep == (footstep.Config{}) {
		o.Footstep = footstep.DefaultConfig()
	}
	return o
}

// Walker персонаж с диспетчером шагов
type Walker struct {
	Character  *entity.Character
	Dispatcher *footstep.Dispatcher
	Steps      int
	walked     float64
}

// Result итог прогона
type Result struct {
	Steps    map[footstep.ActorID]int
	Outcomes map[footstep.Outcome]int
	SimTime  time.Duration
}

// Simulation набор персонажей на общей поверхности.
// Run не должен вызываться параллельно.
type Simulation struct {
	world    *terrain.Terrain
	registry *surface.Registry
	opts     Options
	effects  EffectsFactory

	mu      sync.RWMutex
	walkers []*Walker
	log     *logging.Logger
}

// New создаёт симуляцию. effects может быть nil - эффекты никуда не уходят.
func New(world *terrain.Terrain, registry *surface.Registry, opts Options, effects EffectsFactory) *Simulation {
	return &Simulation{
		world:    world,
		registry: registry,
		opts:     opts.withDefaults(),
		effects:  effects,
		log:      logging.GetComponentLogger("sim"),
	}
}

// Spawn ставит персонажа на землю в точке (x, y) и запускает ходьбу
func (s *Simulation) Spawn(x, y float64) (*Walker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := vec.Vec3Float{X: x, Y: y}
	if z, ok := s.world.GroundHeight(pos); ok {
		pos.Z = z
	}

	c := entity.NewCharacter(pos, s.opts.Seed+int64(len(s.walkers)))
	var fx Effects
	if s.effects != nil {
		fx = s.effects(c.ID)
	}

	d, err := footstep.NewDispatcher(footstep.Deps{
		Owner:     c.ID,
		Actor:     c,
		Skeleton:  c,
		World:     s.world,
		Registry:  s.registry,
		Audio:     fx.Audio,
		Decals:    fx.Decals,
		Particles: fx.Particles,
		Observer:  fx.Observer,
	}, s.opts.Footstep)
	if err != nil {
		return nil, fmt.Errorf("персонаж %s: %w", c.ID, err)
	}

	c.SetState(entity.NewWalkState(c, s.opts.Speed))
	s.world.PutBody(c.ID, c.Position, BodyRadius, BodyHeight)

	w := &Walker{Character: c, Dispatcher: d}
	s.walkers = append(s.walkers, w)
	s.log.Debug("🚶 Персонаж %s появился в (%.0f, %.0f, %.0f)", c.ID, pos.X, pos.Y, pos.Z)
	return w, nil
}

// Walkers возвращает копию списка персонажей
func (s *Simulation) Walkers() []*Walker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Walker(nil), s.walkers...)
}

// tick продвигает персонажа на dt и вызывает OnStep, если пройдена длина шага
func (s *Simulation) tick(w *Walker, dt float64, res *Result) error {
	c := w.Character
	c.Update(dt)
	w.walked += c.Move(dt)

	if z, ok := s.world.GroundHeight(c.Position); ok {
		c.Position.Z = z
	}
	s.world.PutBody(c.ID, c.Position, BodyRadius, BodyHeight)

	if w.walked < s.opts.Stride {
		return nil
	}
	w.walked -= s.opts.Stride

	report, err := w.Dispatcher.OnStep()
	w.Steps++
	res.Steps[c.ID]++
	res.Outcomes[report.Outcome]++
	return err
}

// Run двигает всех персонажей, пока каждый не сделает steps шагов.
// Ошибка настройки диспетчера прерывает прогон.
func (s *Simulation) Run(ctx context.Context, steps int) (Result, error) {
	res := Result{
		Steps:    make(map[footstep.ActorID]int),
		Outcomes: make(map[footstep.Outcome]int),
	}
	walkers := s.Walkers()
	if steps <= 0 || len(walkers) == 0 {
		return res, nil
	}

	dt := s.opts.Tick.Seconds()
	// Время ходьбы с запасом на паузы между прогулками
	walkTime := float64(steps) * s.opts.Stride / s.opts.Speed
	maxTicks := int(walkTime/dt)*4 + 1000

	target := make(map[*Walker]int, len(walkers))
	for _, w := range walkers {
		target[w] = w.Steps + steps
	}

	for tick := 0; tick < maxTicks; tick++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		done := true
		for _, w := range walkers {
			if w.Steps >= target[w] {
				continue
			}
			done = false
			if err := s.tick(w, dt, &res); err != nil {
				return res, err
			}
		}
		if done {
			return res, nil
		}
		res.SimTime += s.opts.Tick
	}

	return res, fmt.Errorf("%w: %d тиков", ErrStalled, maxTicks)
}
