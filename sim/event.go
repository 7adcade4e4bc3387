package sim

// An Event is something scheduled to happen at a future simulated Time. The
// scheduler orders events lexicographically by (Time, Epsilon, seq); seq is
// assigned by the EventQueue at Push time and is never set by callers.
type Event interface {
	Time() Time
	Epsilon() Epsilon
	Handler() Handler
	Payload() interface{}
}

// A Handler accepts dispatch of an Event targeted at it. Akita's convention
// that a component may only schedule events for itself carries over here:
// the only component allowed to call Schedule with a foreign Handler is the
// one kick-starting the simulation.
type Handler interface {
	Handle(e Event) error
}

// EventBase provides the common fields every concrete event embeds.
type EventBase struct {
	time    Time
	epsilon Epsilon
	handler Handler
	payload interface{}
}

// NewEventBase creates an EventBase for the given time and handler. Payload
// may be nil; the insertion sequence number is assigned later, by the
// EventQueue the event is pushed onto.
func NewEventBase(t Time, handler Handler, payload interface{}) EventBase {
	return EventBase{time: t, handler: handler, payload: payload}
}

// Time returns the time the event is scheduled to occur at.
func (e EventBase) Time() Time { return e.time }

// Epsilon returns the tie-breaking epsilon of the event.
func (e EventBase) Epsilon() Epsilon { return e.epsilon }

// Handler returns the handler responsible for the event.
func (e EventBase) Handler() Handler { return e.handler }

// Payload returns the opaque payload attached to the event.
func (e EventBase) Payload() interface{} { return e.payload }

// WithEpsilon returns a copy of the EventBase with the given epsilon. Used
// by callers that need same-time ordering relative to another event.
func (e EventBase) WithEpsilon(eps Epsilon) EventBase {
	e.epsilon = eps
	return e
}
