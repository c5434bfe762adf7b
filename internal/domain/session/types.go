package session

// State is the booking state of a conversation.
type State string

const (
	StateCollectingInfo State = "COLLECTING_INFO"
	StateConfirming     State = "CONFIRMING"
	StateConfirmed      State = "CONFIRMED"
	StateCompleted      State = "COMPLETED"
)

var transitions = map[State][]State{
	StateCollectingInfo: {StateConfirming},
	StateConfirming:     {StateCollectingInfo, StateConfirmed},
	StateConfirmed:      {StateCompleted},
	StateCompleted:      {StateCollectingInfo},
}

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)
