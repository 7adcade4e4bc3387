package sim

import "fmt"

// TimeTeller reports the engine's current time.
type TimeTeller interface {
	CurrentTime() Time
}

// EventScheduler accepts events to run in the future.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler runs once after the engine stops.
type SimulationEndHandler interface {
	Handle(now Time)
}

// PrematureQuiescenceError is returned by Run when the event queue empties
// while the caller still expects forward progress (e.g. active terminals
// that have not yet reached a terminal FSM state). Spec §4.1 treats this as
// fatal; callers decide whether that means panicking or failing a test.
type PrematureQuiescenceError struct {
	At Time
}

func (e *PrematureQuiescenceError) Error() string {
	return fmt.Sprintf("premature quiescence: event queue emptied at %s", e.At)
}

// QuiescenceChecker is consulted by the engine when its event queue empties,
// to decide whether that is expected termination or a fatal premature
// quiescence (spec §4.1's "Heap empty before workload termination with
// active terminals").
type QuiescenceChecker interface {
	// Quiesced reports whether the simulation has legitimately finished.
	Quiesced() bool
}

// An Engine runs the cooperative, single-threaded dispatch loop described in
// spec §4.1/§5: it pops the earliest event, advances current time to that
// event's time (never backwards), and invokes the event's Handler.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes events until the queue is empty or a handler calls
	// Exit(). Returns a *PrematureQuiescenceError if the queue empties while
	// a registered QuiescenceChecker reports the run is not done.
	Run() error

	// Exit requests that Run stop after the event currently dispatching
	// (if any) finishes.
	Exit()

	// SetQuiescenceChecker installs the checker consulted on queue-empty.
	SetQuiescenceChecker(c QuiescenceChecker)

	RegisterSimulationEndHandler(h SimulationEndHandler)
	Finished()
}

// DiscreteEngine is the sole Engine implementation: a serial, cooperative
// dispatch loop over a single EventQueue, grounded on akita's SerialEngine
// but keyed on integer picosecond Time with explicit epsilon tie-breaking.
type DiscreteEngine struct {
	HookableBase

	queue             EventQueue
	now               Time
	exitRequested     bool
	quiescenceChecker QuiescenceChecker
	endHandlers       []SimulationEndHandler
}

// NewDiscreteEngine creates an empty DiscreteEngine.
func NewDiscreteEngine() *DiscreteEngine {
	return &DiscreteEngine{queue: NewEventQueue()}
}

// CurrentTime returns the time of the event currently (or most recently)
// dispatched.
func (e *DiscreteEngine) CurrentTime() Time {
	return e.now
}

// Schedule enqueues evt. Scheduling an event in the past is fatal, per
// spec §4.1 ("No event may be scheduled in the past; doing so is fatal").
func (e *DiscreteEngine) Schedule(evt Event) {
	if evt.Time() < e.now {
		panic(fmt.Sprintf(
			"cannot schedule event at %s before current time %s",
			evt.Time(), e.now))
	}

	e.queue.Push(evt)
}

// Exit requests Run stop once the current dispatch returns.
func (e *DiscreteEngine) Exit() {
	e.exitRequested = true
}

// SetQuiescenceChecker installs c.
func (e *DiscreteEngine) SetQuiescenceChecker(c QuiescenceChecker) {
	e.quiescenceChecker = c
}

// Run executes the dispatch loop. See Engine.Run.
func (e *DiscreteEngine) Run() error {
	for !e.exitRequested {
		if e.queue.Len() == 0 {
			if e.quiescenceChecker != nil && !e.quiescenceChecker.Quiesced() {
				return &PrematureQuiescenceError{At: e.now}
			}

			return nil
		}

		evt := e.queue.Pop()

		if evt.Time() < e.now {
			panic(fmt.Sprintf(
				"cannot dispatch event at %s before current time %s",
				evt.Time(), e.now))
		}

		e.now = evt.Time()

		e.InvokeHook(HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt})

		handler := evt.Handler()
		if handler == nil {
			panic("event has no handler")
		}

		if err := handler.Handle(evt); err != nil {
			return err
		}

		e.InvokeHook(HookCtx{Domain: e, Pos: HookPosAfterEvent, Item: evt})
	}

	return nil
}

// RegisterSimulationEndHandler registers h to run when Finished is called.
func (e *DiscreteEngine) RegisterSimulationEndHandler(h SimulationEndHandler) {
	e.endHandlers = append(e.endHandlers, h)
}

// Finished invokes every registered SimulationEndHandler with the engine's
// final time.
func (e *DiscreteEngine) Finished() {
	for _, h := range e.endHandlers {
		h.Handle(e.now)
	}
}
