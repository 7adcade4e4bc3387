// Package sim provides the discrete-event scheduling core that drives a
// fabricsim run: simulated time, the event queue, the dispatch loop, named
// clock domains, the component tree, a shared RNG service, and the hook
// mechanism used by statistics sinks.
package sim

import "fmt"

// Time is simulated time, in picoseconds, since the start of the run.
// It is always non-negative.
type Time int64

// String renders a Time for logs and panics.
func (t Time) String() string {
	return fmt.Sprintf("%dps", int64(t))
}

// Epsilon is the explicit sub-time tie-breaker for events that land on the
// same Time but whose relative order is semantically required.
type Epsilon int32
