package footstep

// Foot состояние чередования: какая нога будет опрошена следующей
type Foot uint8

const (
	LeftPending Foot = iota
	RightPending
)

// Other возвращает противоположное состояние
func (f Foot) Other() Foot {
	if f == LeftPending {
		return RightPending
	}
	return LeftPending
}

// IsLeft сообщает, относится ли состояние к левой ноге
func (f Foot) IsLeft() bool {
	return f == LeftPending
}

func (f Foot) String() string {
	if f == LeftPending {
		return "left"
	}
	return "right"
}

// MarshalText реализует encoding.TextMarshaler
func (f Foot) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText принимает "left" и "right"
func (f *Foot) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left", "l", "LeftPending":
		*f = LeftPending
	case "right", "r", "RightPending":
		*f = RightPending
	default:
		return ErrUnknownFoot
	}
	return nil
}
