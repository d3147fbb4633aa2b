package entity

// State представляет состояние конечного автомата персонажа
type State interface {
	Name() string
	Enter(c *Character)
	Update(c *Character, dt float64) State
	Exit(c *Character)
}

// Update обновляет состояние персонажа
func (c *Character) Update(dt float64) {
	if c.CurrentState == nil {
		return
	}
	newState := c.CurrentState.Update(c, dt)
	if newState != c.CurrentState {
		c.CurrentState.Exit(c)
		c.CurrentState = newState
		c.CurrentState.Enter(c)
	}
}

// SetState устанавливает новое состояние персонажа
func (c *Character) SetState(state State) {
	if c.CurrentState != nil {
		c.CurrentState.Exit(c)
	}

	c.CurrentState = state

	if c.CurrentState != nil {
		c.CurrentState.Enter(c)
	}
}

// === Конкретные состояния ===

// IdleState - персонаж стоит на месте
type IdleState struct {
	TimeInState float64
	MaxIdleTime float64
	WalkSpeed   float64
}

// NewIdleState создаёт состояние ожидания длительностью от 0.5 до 2 секунд
func NewIdleState(c *Character, walkSpeed float64) *IdleState {
	return &IdleState{
		MaxIdleTime: 0.5 + c.Rand.Float64()*1.5,
		WalkSpeed:   walkSpeed,
	}
}

func (s *IdleState) Name() string { return "idle" }

func (s *IdleState) Enter(c *Character) {
	s.TimeInState = 0
	// Останавливаем движение
	c.Velocity = c.Velocity.Mul(0)
}

func (s *IdleState) Update(c *Character, dt float64) State {
	s.TimeInState += dt

	// Переход в Walk после определённого времени
	if s.TimeInState >= s.MaxIdleTime {
		return NewWalkState(c, s.WalkSpeed)
	}

	return s
}

func (s *IdleState) Exit(c *Character) {}

// WalkState - персонаж идёт вперёд, иногда сворачивая
type WalkState struct {
	Speed       float64
	TimeInState float64
	MaxWalkTime float64
}

// NewWalkState создаёт состояние ходьбы длительностью от 3 до 8 секунд
func NewWalkState(c *Character, speed float64) *WalkState {
	return &WalkState{
		Speed:       speed,
		MaxWalkTime: 3.0 + c.Rand.Float64()*5.0,
	}
}

func (s *WalkState) Name() string { return "walk" }

func (s *WalkState) Enter(c *Character) {
	s.TimeInState = 0

	// Случайный поворот в пределах ±60 градусов
	c.Face(c.Rotation.Yaw + (c.Rand.Float64()*120 - 60))
	c.Velocity = c.ForwardVector().Flat().Normalized().Mul(s.Speed)
}

func (s *WalkState) Update(c *Character, dt float64) State {
	s.TimeInState += dt

	if s.TimeInState >= s.MaxWalkTime {
		return NewIdleState(c, s.Speed)
	}
	return s
}

func (s *WalkState) Exit(c *Character) {}
