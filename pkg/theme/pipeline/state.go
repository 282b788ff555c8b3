package pipeline

// State is a stage of a packaging run.
type State int

const (
	StateIdle State = iota
	StateDecoding
	StateResampling
	StateDescribing
	StateAssembling
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDecoding:
		return "Decoding"
	case StateResampling:
		return "Resampling"
	case StateDescribing:
		return "Describing"
	case StateAssembling:
		return "Assembling"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// StatusFunc receives every state transition with a short human-readable
// message.
type StatusFunc func(state State, message string)
