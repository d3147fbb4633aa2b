package entity

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/footstep-fx/internal/footstep"
	"github.com/annel0/footstep-fx/internal/vec"
	"github.com/google/uuid"
)

var (
	// ErrNoMesh у персонажа нет скелетного меша
	ErrNoMesh = errors.New("character has no skeletal mesh")
	// ErrUnknownSocket запрошен несуществующий сокет
	ErrUnknownSocket = errors.New("unknown socket")
)

// Character представляет персонажа с простым скелетом из сокетов.
// Реализует footstep.ActorStateProvider и footstep.SkeletalPositionProvider.
type Character struct {
	ID           footstep.ActorID
	Position     vec.Vec3Float            // Положение корня (между стопами, на уровне земли)
	Rotation     vec.Rotator              // Ориентация
	Velocity     vec.Vec3Float            // Текущая скорость, единиц/сек
	Sockets      map[string]vec.Vec3Float // Смещения сокетов в локальных координатах
	HasMesh      bool                     // false - меш ещё не загружен
	CurrentState State
	Rand         *rand.Rand
}

// DefaultSockets смещения стоп относительно корня: X вперёд, Y влево
func DefaultSockets() map[string]vec.Vec3Float {
	return map[string]vec.Vec3Float{
		footstep.DefaultLeftSocket:  {X: 0, Y: 12, Z: 4},
		footstep.DefaultRightSocket: {X: 0, Y: -12, Z: 4},
	}
}

// NewCharacter создаёт персонажа с новым UUID
func NewCharacter(pos vec.Vec3Float, seed int64) *Character {
	return &Character{
		ID:       footstep.ActorID(uuid.NewString()),
		Position: pos,
		Sockets:  DefaultSockets(),
		HasMesh:  true,
		Rand:     rand.New(rand.NewSource(seed)),
	}
}

// ActorLocation возвращает положение персонажа
func (c *Character) ActorLocation() vec.Vec3Float {
	return c.Position
}

// ActorRotation возвращает ориентацию персонажа
func (c *Character) ActorRotation() vec.Rotator {
	return c.Rotation
}

// ForwardVector возвращает направление взгляда
func (c *Character) ForwardVector() vec.Vec3Float {
	return c.Rotation.Forward()
}

// Speed возвращает модуль скорости
func (c *Character) Speed() float64 {
	return c.Velocity.Length()
}

// SocketWorldLocation переводит смещение сокета в мировые координаты (поворот только по yaw)
func (c *Character) SocketWorldLocation(socket string) (vec.Vec3Float, error) {
	if !c.HasMesh {
		return vec.Vec3Float{}, ErrNoMesh
	}
	local, ok := c.Sockets[socket]
	if !ok {
		return vec.Vec3Float{}, fmt.Errorf("%w: %s", ErrUnknownSocket, socket)
	}

	yaw := c.Rotation.Yaw * math.Pi / 180
	sin, cos := math.Sin(yaw), math.Cos(yaw)
	world := vec.Vec3Float{
		X: local.X*cos - local.Y*sin,
		Y: local.X*sin + local.Y*cos,
		Z: local.Z,
	}
	return c.Position.Add(world), nil
}

// Face поворачивает персонажа по yaw
func (c *Character) Face(yaw float64) {
	c.Rotation.Yaw = vec.Rotator{Yaw: yaw}.Normalized().Yaw
}

// Move перемещает персонажа по текущей скорости и возвращает пройденное расстояние
func (c *Character) Move(dt float64) float64 {
	step := c.Velocity.Mul(dt)
	c.Position = c.Position.Add(step)
	return step.Length()
}
