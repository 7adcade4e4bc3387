package netmsg

import "fmt"

// OutstandingTracker tracks, per transaction ID, how many messages remain
// before the transaction is complete (spec §3's `outstanding` map). The
// zero value is ready to use.
type OutstandingTracker struct {
	remaining map[uint64]int
}

// Start begins tracking transaction id with count expected messages.
// count must be > 0. Starting an already-tracked transaction is fatal — it
// is an invariant violation, never an expected state.
func (t *OutstandingTracker) Start(id uint64, count int) {
	if t.remaining == nil {
		t.remaining = make(map[uint64]int)
	}

	if _, found := t.remaining[id]; found {
		panic(fmt.Sprintf("transaction %d is already tracked", id))
	}

	if count <= 0 {
		panic(fmt.Sprintf("transaction %d started with non-positive count %d", id, count))
	}

	t.remaining[id] = count
}

// Complete decrements the remaining count for id by one and reports
// whether that was the last message of the transaction. Calling Complete
// for an untracked id is fatal.
func (t *OutstandingTracker) Complete(id uint64) (last bool) {
	remaining, found := t.remaining[id]
	if !found {
		panic(fmt.Sprintf("transaction %d is not tracked", id))
	}

	if remaining <= 0 {
		panic(fmt.Sprintf("transaction %d has non-positive remaining count", id))
	}

	remaining--
	if remaining == 0 {
		delete(t.remaining, id)
		return true
	}

	t.remaining[id] = remaining
	return false
}

// Remaining returns the outstanding count for id and whether it is tracked.
func (t *OutstandingTracker) Remaining(id uint64) (int, bool) {
	n, found := t.remaining[id]
	return n, found
}

// Len returns the number of transactions currently tracked.
func (t *OutstandingTracker) Len() int {
	return len(t.remaining)
}

// Empty reports whether no transactions are tracked — the destructor-time
// invariant from spec §8 ("At destructor time: outstanding is empty.").
func (t *OutstandingTracker) Empty() bool {
	return len(t.remaining) == 0
}
