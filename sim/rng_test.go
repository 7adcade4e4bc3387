package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archfab/fabricsim/sim"
)

var _ = Describe("RNGService", func() {
	It("is deterministic for a given seed and subsystem", func() {
		a := sim.NewRNGService(42).ForSubsystem("traffic")
		b := sim.NewRNGService(42).ForSubsystem("traffic")

		for i := 0; i < 10; i++ {
			Expect(a.Int63()).To(Equal(b.Int63()))
		}
	})

	It("gives independent streams to different subsystems", func() {
		s := sim.NewRNGService(1)
		traffic := s.ForSubsystem("traffic")
		msgsize := s.ForSubsystem("msgsize")

		Expect(traffic.Int63()).NotTo(Equal(msgsize.Int63()))
	})

	It("caches the *rand.Rand per subsystem name", func() {
		s := sim.NewRNGService(7)
		a := s.ForSubsystem("x")
		b := s.ForSubsystem("x")
		Expect(a).To(BeIdenticalTo(b))
	})
})

var _ = Describe("TransactionAllocator", func() {
	It("hands out increasing, never-repeating IDs starting at 1", func() {
		var a sim.TransactionAllocator
		Expect(a.Allocate()).To(Equal(uint64(1)))
		Expect(a.Allocate()).To(Equal(uint64(2)))
		Expect(a.Allocate()).To(Equal(uint64(3)))
	})
})

var _ = Describe("Sequential IDGenerator", func() {
	It("produces unique, increasing IDs", func() {
		g := sim.NewSequentialIDGenerator()
		first := g.Generate()
		second := g.Generate()
		Expect(first).NotTo(Equal(second))
	})
})
