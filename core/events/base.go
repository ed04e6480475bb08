package events

import "time"

// Kind names an event type within the dotted namespaces listed in the
// package documentation.
type Kind string

// Event is implemented by every engine event.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind tag and emission time shared by all events.
// Embed it and build it with NewBase.
type Base struct {
	kind Kind
	at   time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, at: time.Now()}
}

func (b Base) Kind() Kind { return b.kind }

// Timestamp is the moment the event was emitted.
func (b Base) Timestamp() time.Time { return b.at }
