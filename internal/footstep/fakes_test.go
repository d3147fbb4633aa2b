package footstep

import (
	"errors"

	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/annel0/footstep-fx/internal/vec"
)

var errNoSocket = errors.New("socket not found")

// fakeCharacter реализует ActorStateProvider и SkeletalPositionProvider
type fakeCharacter struct {
	location vec.Vec3Float
	rotation vec.Rotator
	forward  vec.Vec3Float
	speed    float64
	sockets  map[string]vec.Vec3Float
	queried  []string
}

func newFakeCharacter() *fakeCharacter {
	return &fakeCharacter{
		location: vec.Vec3Float{X: 10, Y: 20, Z: 90},
		rotation: vec.Rotator{Yaw: 90},
		forward:  vec.Vec3Float{Y: 1},
		speed:    6,
		sockets: map[string]vec.Vec3Float{
			DefaultLeftSocket:  {X: 5, Y: 20, Z: 2},
			DefaultRightSocket: {X: 15, Y: 20, Z: 2},
		},
	}
}

func (c *fakeCharacter) ActorLocation() vec.Vec3Float { return c.location }
func (c *fakeCharacter) ActorRotation() vec.Rotator   { return c.rotation }
func (c *fakeCharacter) ForwardVector() vec.Vec3Float { return c.forward }
func (c *fakeCharacter) Speed() float64               { return c.speed }

func (c *fakeCharacter) SocketWorldLocation(socket string) (vec.Vec3Float, error) {
	c.queried = append(c.queried, socket)
	loc, ok := c.sockets[socket]
	if !ok {
		return vec.Vec3Float{}, errNoSocket
	}
	return loc, nil
}

type traceCall struct {
	start, end vec.Vec3Float
	exclude    ActorID
}

// fakeWorld возвращает заранее заданное попадание
type fakeWorld struct {
	hit   Hit
	found bool
	calls []traceCall
}

func (w *fakeWorld) TraceDownward(start, end vec.Vec3Float, exclude ActorID) (Hit, bool) {
	w.calls = append(w.calls, traceCall{start: start, end: end, exclude: exclude})
	return w.hit, w.found
}

func hitOn(kind surface.Kind, at vec.Vec3Float) *fakeWorld {
	return &fakeWorld{hit: Hit{Location: at, Kind: kind, HasKind: true}, found: true}
}

type soundCall struct {
	sound string
	at    vec.Vec3Float
}

type decalCall struct {
	decal    string
	size     vec.Vec3Float
	at       vec.Vec3Float
	rotation vec.Rotator
	lifespan float64
}

type particleCall struct {
	particle string
	at       vec.Vec3Float
}

// recorder записывает все вызовы стоков
type recorder struct {
	sounds    []soundCall
	decals    []decalCall
	particles []particleCall
}

func (r *recorder) total() int { return len(r.sounds) + len(r.decals) + len(r.particles) }

type audioRec struct{ r *recorder }

func (a audioRec) PlayAt(sound string, at vec.Vec3Float) {
	a.r.sounds = append(a.r.sounds, soundCall{sound: sound, at: at})
}

type decalRec struct{ r *recorder }

func (d decalRec) SpawnAt(decal string, size, at vec.Vec3Float, rotation vec.Rotator, lifespan float64) {
	d.r.decals = append(d.r.decals, decalCall{decal: decal, size: size, at: at, rotation: rotation, lifespan: lifespan})
}

type particleRec struct{ r *recorder }

func (p particleRec) SpawnAt(particle string, at vec.Vec3Float) {
	p.r.particles = append(p.r.particles, particleCall{particle: particle, at: at})
}

type observerRec struct {
	reports []StepReport
}

func (o *observerRec) ObserveStep(report StepReport) {
	o.reports = append(o.reports, report)
}
