package events

// KindStateChanged identifies an interaction state transition.
const KindStateChanged Kind = "state.changed"

// StateChanged marks an interaction state transition.
type StateChanged struct {
	Base
	From string
	To   string
}

// NewStateChanged creates a state changed event.
func NewStateChanged(from, to string) StateChanged {
	return StateChanged{Base: NewBase(KindStateChanged), From: from, To: to}
}
