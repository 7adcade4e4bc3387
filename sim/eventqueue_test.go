package sim_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archfab/fabricsim/sim"
)

type fakeEvent struct {
	t   sim.Time
	eps sim.Epsilon
	id  int
}

func (e fakeEvent) Time() sim.Time       { return e.t }
func (e fakeEvent) Epsilon() sim.Epsilon { return e.eps }
func (e fakeEvent) Handler() sim.Handler { return nil }
func (e fakeEvent) Payload() interface{} { return nil }

var _ = Describe("EventQueue", func() {
	var queue sim.EventQueue

	BeforeEach(func() {
		queue = sim.NewEventQueue()
	})

	It("pops events in non-decreasing time order", func() {
		for i := 0; i < 200; i++ {
			queue.Push(fakeEvent{t: sim.Time(rand.Intn(1000))})
		}

		last := sim.Time(-1)
		for queue.Len() > 0 {
			evt := queue.Pop()
			Expect(evt.Time() >= last).To(BeTrue())
			last = evt.Time()
		}
	})

	It("breaks same-time ties by epsilon", func() {
		queue.Push(fakeEvent{t: 10, eps: 2})
		queue.Push(fakeEvent{t: 10, eps: 0})
		queue.Push(fakeEvent{t: 10, eps: 1})

		Expect(queue.Pop().Epsilon()).To(Equal(sim.Epsilon(0)))
		Expect(queue.Pop().Epsilon()).To(Equal(sim.Epsilon(1)))
		Expect(queue.Pop().Epsilon()).To(Equal(sim.Epsilon(2)))
	})

	It("breaks remaining ties by insertion order (FIFO)", func() {
		for i := 0; i < 5; i++ {
			queue.Push(fakeEvent{t: 5, eps: 0, id: i})
		}

		Expect(queue.Len()).To(Equal(5))
		// All entries are equal under (time, epsilon); they must come back in
		// the order they were pushed, and exactly the pushed count.
		count := 0
		for queue.Len() > 0 {
			Expect(queue.Pop().(fakeEvent).id).To(Equal(count))
			count++
		}
		Expect(count).To(Equal(5))
	})

	It("peeks without removing", func() {
		queue.Push(fakeEvent{t: 3})
		Expect(queue.Peek().Time()).To(Equal(sim.Time(3)))
		Expect(queue.Len()).To(Equal(1))
	})
})
