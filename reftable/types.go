package reftable

import "fmt"

// Handle is an opaque reference into a Table. Handle 0 is reserved and
// always invalid.
type Handle uint64

func (h Handle) index() uint32 { return uint32(h) - 1 }
func (h Handle) gen() uint32   { return uint32(h >> 32) }

func makeHandle(idx, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(idx+1))
}

func (h Handle) String() string {
	if h == 0 {
		return "null"
	}
	return fmt.Sprintf("#%d.%d", h.index(), h.gen())
}

// Kind tags the lifetime class of a reference.
type Kind uint8

const (
	Local Kind = iota + 1
	Global
)

func (k Kind) String() string {
	switch k {
	case Local:
		return "local"
	case Global:
		return "global"
	}
	return "unknown"
}

// EventType identifies a reference lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDeleted
)

// Event represents a reference lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about reference lifecycle events.
type Observer interface {
	OnReferenceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnReferenceEvent(e Event) { f(e) }
