package core

// State is the lifecycle state of the puzzle currently displayed
type State int

const (
	StateAwaitingPlayerMove    State = iota
	StateAwaitingOpponentReply       // Scripted reply is scheduled but not yet applied
	StateSolved
)

// MarshalJSON emits the wire form used by the HTTP API
func (s State) MarshalJSON() ([]byte, error) {
	switch s {
	case StateAwaitingOpponentReply:
		return []byte(`"awaitingOpponentReply"`), nil
	case StateSolved:
		return []byte(`"solved"`), nil
	default:
		return []byte(`"awaitingPlayerMove"`), nil
	}
}

func (s State) String() string {
	switch s {
	case StateAwaitingOpponentReply:
		return "awaiting opponent reply"
	case StateSolved:
		return "solved"
	case StateAwaitingPlayerMove:
		return "awaiting player move"
	default:
		return "unknown"
	}
}
