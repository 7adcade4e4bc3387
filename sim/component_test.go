package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archfab/fabricsim/sim"
)

type stubComponent struct {
	*sim.ComponentBase
}

func newStubComponent(name string) *stubComponent {
	return &stubComponent{ComponentBase: sim.NewComponentBase(name)}
}

func (s *stubComponent) Handle(e sim.Event) error { return nil }

var _ = Describe("ComponentBase", func() {
	It("builds a dotted qualified name from parent to child", func() {
		root := newStubComponent("Network")
		router := newStubComponent("Router[2]")
		terminal := newStubComponent("Terminal[0]")

		root.AddChild(router)
		router.AddChild(terminal)

		Expect(sim.QualifiedName(terminal)).To(Equal("Network.Router[2].Terminal[0]"))
		Expect(terminal.Parent()).To(BeIdenticalTo(sim.Component(router)))
		Expect(router.Children()).To(ConsistOf(sim.Component(terminal)))
	})

	It("panics when a component is attached to two parents", func() {
		root1 := newStubComponent("A")
		root2 := newStubComponent("B")
		child := newStubComponent("C")

		root1.AddChild(child)
		Expect(func() { root2.AddChild(child) }).To(Panic())
	})
})

var _ = Describe("Registry", func() {
	It("finds a component by its qualified name", func() {
		root := newStubComponent("Network")
		child := newStubComponent("Terminal[0]")
		root.AddChild(child)

		reg := sim.NewRegistry()
		reg.Register(root)
		reg.Register(child)

		Expect(reg.Lookup("Network.Terminal[0]")).To(BeIdenticalTo(sim.Component(child)))
		Expect(reg.Lookup("Missing")).To(BeNil())
	})
})
