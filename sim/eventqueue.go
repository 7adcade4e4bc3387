package sim

import "container/heap"

// EventQueue holds pending events ordered by (Time, Epsilon, insertion
// sequence). It is not safe for concurrent use — the engine that owns it is
// the only caller, per the single-threaded cooperative model of spec §5.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Peek() Event
	Len() int
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() EventQueue {
	q := &eventQueueImpl{}
	heap.Init(&q.entries)
	return q
}

type queueEntry struct {
	evt Event
	seq uint64
}

type eventQueueImpl struct {
	entries entryHeap
	nextSeq uint64
}

func (q *eventQueueImpl) Push(evt Event) {
	heap.Push(&q.entries, queueEntry{evt: evt, seq: q.nextSeq})
	q.nextSeq++
}

func (q *eventQueueImpl) Pop() Event {
	e := heap.Pop(&q.entries).(queueEntry)
	return e.evt
}

func (q *eventQueueImpl) Peek() Event {
	return q.entries[0].evt
}

func (q *eventQueueImpl) Len() int {
	return len(q.entries)
}

type entryHeap []queueEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.evt.Time() != b.evt.Time() {
		return a.evt.Time() < b.evt.Time()
	}

	if a.evt.Epsilon() != b.evt.Epsilon() {
		return a.evt.Epsilon() < b.evt.Epsilon()
	}

	return a.seq < b.seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(queueEntry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
