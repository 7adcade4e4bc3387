package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archfab/fabricsim/sim"
)

type recordingHandler struct {
	engine  sim.Engine
	handled []sim.Time
	onFirst func()
}

func (h *recordingHandler) Handle(e sim.Event) error {
	h.handled = append(h.handled, e.Time())
	if len(h.handled) == 1 && h.onFirst != nil {
		h.onFirst()
	}
	return nil
}

type simpleEvent struct {
	sim.EventBase
}

func newSimpleEvent(t sim.Time, h sim.Handler) sim.Event {
	return simpleEvent{EventBase: sim.NewEventBase(t, h, nil)}
}

var _ = Describe("DiscreteEngine", func() {
	var engine *sim.DiscreteEngine

	BeforeEach(func() {
		engine = sim.NewDiscreteEngine()
	})

	It("dispatches events in time order and advances current time", func() {
		h := &recordingHandler{}
		engine.Schedule(newSimpleEvent(30, h))
		engine.Schedule(newSimpleEvent(10, h))
		engine.Schedule(newSimpleEvent(20, h))

		Expect(engine.Run()).To(Succeed())
		Expect(h.handled).To(Equal([]sim.Time{10, 20, 30}))
		Expect(engine.CurrentTime()).To(Equal(sim.Time(30)))
	})

	It("allows re-entrant scheduling during dispatch", func() {
		h := &recordingHandler{}
		h.onFirst = func() {
			engine.Schedule(newSimpleEvent(engine.CurrentTime()+5, h))
		}
		engine.Schedule(newSimpleEvent(0, h))

		Expect(engine.Run()).To(Succeed())
		Expect(h.handled).To(Equal([]sim.Time{0, 5}))
	})

	It("panics when scheduling into the past", func() {
		h := &recordingHandler{}
		engine.Schedule(newSimpleEvent(10, h))
		Expect(engine.Run()).To(Succeed())

		Expect(func() {
			engine.Schedule(newSimpleEvent(5, h))
		}).To(Panic())
	})

	It("reports premature quiescence when the checker says the run isn't done", func() {
		engine.SetQuiescenceChecker(alwaysUnquiesced{})
		err := engine.Run()
		Expect(err).To(HaveOccurred())
		var pq *sim.PrematureQuiescenceError
		Expect(err).To(BeAssignableToTypeOf(pq))
	})

	It("stops cleanly on an empty queue with no checker installed", func() {
		Expect(engine.Run()).To(Succeed())
	})

	It("runs simulation end handlers exactly once when Finished is called", func() {
		calls := 0
		engine.RegisterSimulationEndHandler(endHandlerFunc(func(now sim.Time) {
			calls++
		}))
		engine.Finished()
		Expect(calls).To(Equal(1))
	})
})

type alwaysUnquiesced struct{}

func (alwaysUnquiesced) Quiesced() bool { return false }

type endHandlerFunc func(now sim.Time)

func (f endHandlerFunc) Handle(now sim.Time) { f(now) }
