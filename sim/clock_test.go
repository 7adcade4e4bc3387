package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archfab/fabricsim/sim"
)

var _ = Describe("ClockDomain", func() {
	var channel *sim.ClockDomain

	BeforeEach(func() {
		channel = sim.NewClockDomain("Channel", 100)
	})

	It("reports the cycle count for a given time", func() {
		Expect(channel.Cycle(0)).To(Equal(uint64(0)))
		Expect(channel.Cycle(250)).To(Equal(uint64(2)))
	})

	It("returns the current time when already on an edge and n=0", func() {
		Expect(channel.FutureCycle(300, 0)).To(Equal(sim.Time(300)))
	})

	It("returns the next edge when not aligned and n=0", func() {
		Expect(channel.FutureCycle(250, 0)).To(Equal(sim.Time(300)))
	})

	It("returns the nth future edge past the current time", func() {
		Expect(channel.FutureCycle(0, 1)).To(Equal(sim.Time(100)))
		Expect(channel.FutureCycle(50, 1)).To(Equal(sim.Time(200)))
	})

	It("panics on a non-positive period", func() {
		Expect(func() { sim.NewClockDomain("Bad", 0) }).To(Panic())
	})
})

var _ = Describe("ClockRegistry", func() {
	It("registers and looks up domains by name", func() {
		r := sim.NewClockRegistry()
		d := sim.NewClockDomain("Terminal", 1000)
		r.Register(d)

		Expect(r.Domain("Terminal")).To(BeIdenticalTo(d))
	})

	It("panics registering a duplicate name", func() {
		r := sim.NewClockRegistry()
		r.Register(sim.NewClockDomain("Terminal", 1000))

		Expect(func() {
			r.Register(sim.NewClockDomain("Terminal", 2000))
		}).To(Panic())
	})

	It("panics looking up an unregistered domain", func() {
		r := sim.NewClockRegistry()
		Expect(func() { r.Domain("Missing") }).To(Panic())
	})
})
