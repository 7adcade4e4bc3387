// Package direct implements a minimal all-to-all Network: every interface
// reaches every other in one hop after a fixed latency. It exists as the
// reference/test double network.Network's consumers are exercised against,
// grounded on akita's noc/messaging one-hop channel tests rather than a
// real multi-stage topology.
package direct

import (
	"fmt"

	"github.com/archfab/fabricsim/netmsg"
	"github.com/archfab/fabricsim/network"
	"github.com/archfab/fabricsim/sim"
)

// Network is a single-hop, fixed-latency implementation of network.Network.
type Network struct {
	*sim.ComponentBase

	engine        sim.EventScheduler
	clock         sim.TimeTeller
	latency       sim.Time
	numInterfaces int
	idGen         sim.IDGenerator
	recipients    map[int]network.Recipient

	enrouteMessages int
	enroutePackets  int
	enrouteFlits    int
}

// New creates a direct Network with numInterfaces terminal-facing ports,
// each message taking latency picoseconds to arrive after SendMessage.
func New(name string, engine sim.EventScheduler, clock sim.TimeTeller, numInterfaces int, latency sim.Time, idGen sim.IDGenerator) *Network {
	if numInterfaces <= 0 {
		panic(fmt.Sprintf("direct: numInterfaces must be > 0, got %d", numInterfaces))
	}

	if latency < 0 {
		panic(fmt.Sprintf("direct: latency must be >= 0, got %s", latency))
	}

	return &Network{
		ComponentBase: sim.NewComponentBase(name),
		engine:        engine,
		clock:         clock,
		latency:       latency,
		numInterfaces: numInterfaces,
		idGen:         idGen,
		recipients:    make(map[int]network.Recipient),
	}
}

// RegisterRecipient attaches the Recipient for interface id.
func (n *Network) RegisterRecipient(id int, r network.Recipient) {
	n.recipients[id] = r
}

// TranslateInterfaceIDToAddress returns the trivial one-dimensional address
// (id) — a direct network has no further topology to expose.
func (n *Network) TranslateInterfaceIDToAddress(id int) []int {
	return []int{id}
}

// NumInterfaces returns the configured interface count.
func (n *Network) NumInterfaces() int { return n.numInterfaces }

// NumRouters returns 1 — every interface shares the single implicit switch
// a direct network models.
func (n *Network) NumRouters() int { return 1 }

// EnrouteCount reports messages, packets, and flits currently between send
// and delivery.
func (n *Network) EnrouteCount() (messages, packets, flits int) {
	return n.enrouteMessages, n.enroutePackets, n.enrouteFlits
}

type deliverPayload struct {
	msg  *netmsg.Message
	dest int
}

// SendMessage schedules msg for delivery to dest after the network's fixed
// latency and returns its ID.
func (n *Network) SendMessage(msg *netmsg.Message, dest int) string {
	if dest < 0 || dest >= n.numInterfaces {
		panic(fmt.Sprintf("direct: destination %d out of range [0,%d)", dest, n.numInterfaces))
	}

	if msg.ID == "" {
		msg.ID = n.idGen.Generate()
	}

	n.enrouteMessages++
	n.enroutePackets += len(msg.Packets)
	for _, p := range msg.Packets {
		n.enrouteFlits += p.Length()
	}

	evt := sim.NewEventBase(n.clock.CurrentTime()+n.latency, n, deliverPayload{msg: msg, dest: dest})
	n.engine.Schedule(evt)

	return msg.ID
}

// Handle delivers the message to its destination's recipient and confirms
// delivery to its source's recipient.
func (n *Network) Handle(e sim.Event) error {
	p, ok := e.Payload().(deliverPayload)
	if !ok {
		panic(fmt.Sprintf("direct: unexpected event payload %T", e.Payload()))
	}

	n.enrouteMessages--
	n.enroutePackets -= len(p.msg.Packets)
	for _, pk := range p.msg.Packets {
		n.enrouteFlits -= pk.Length()
	}

	if r, found := n.recipients[p.dest]; found {
		r.HandleReceivedMessage(p.msg)
	}

	if r, found := n.recipients[p.msg.SourceID]; found {
		r.HandleDeliveredMessage(p.msg)
	}

	return nil
}
