package netmsg

import "fmt"

// Message is the logical transfer a terminal sends or receives: a bundle of
// Packets carrying an opcode, protocol class, and transaction ID, per
// spec §3.
type Message struct {
	ID            string
	Opcode        uint32
	ProtocolClass uint32
	Transaction   uint64
	SourceID      int
	DestID        int
	Packets       []*Packet

	sizeFlits int
}

// SizeFlits returns the total flit count of the message (sum of packet
// lengths), which equals the messageSize it was built from.
func (m *Message) SizeFlits() int {
	return m.sizeFlits
}

// NumFlitsInMessage is an alias of SizeFlits used by callers that think in
// terms of "flits received" counters, matching the original's naming.
func (m *Message) NumFlitsInMessage() int {
	return m.sizeFlits
}

// MessageBuilder constructs a Message and splits it into packets/flits
// according to the factory rules in spec §3/§4.4:
//
//	numPackets = ceil(messageSize / maxPacketSize)
//	sum of packet lengths == messageSize
//	exactly one head flit (index 0) and one tail flit (index length-1) per packet
type MessageBuilder struct {
	opcode        uint32
	protocolClass uint32
	transaction   uint64
	sourceID      int
	destID        int
	sizeFlits     int
	maxPacketSize int
	idGen         func() string
}

// NewMessageBuilder creates a builder that mints message IDs with idGen.
func NewMessageBuilder(idGen func() string) MessageBuilder {
	return MessageBuilder{idGen: idGen}
}

// WithOpcode sets the message's opcode.
func (b MessageBuilder) WithOpcode(opcode uint32) MessageBuilder {
	b.opcode = opcode
	return b
}

// WithProtocolClass sets the message's protocol class.
func (b MessageBuilder) WithProtocolClass(pc uint32) MessageBuilder {
	b.protocolClass = pc
	return b
}

// WithTransaction sets the message's transaction ID.
func (b MessageBuilder) WithTransaction(t uint64) MessageBuilder {
	b.transaction = t
	return b
}

// WithSource sets the sending terminal's interface ID.
func (b MessageBuilder) WithSource(id int) MessageBuilder {
	b.sourceID = id
	return b
}

// WithDest sets the receiving terminal's interface ID.
func (b MessageBuilder) WithDest(id int) MessageBuilder {
	b.destID = id
	return b
}

// WithSizeFlits sets the message's total size, in flits. Must be > 0.
func (b MessageBuilder) WithSizeFlits(n int) MessageBuilder {
	b.sizeFlits = n
	return b
}

// WithMaxPacketSize sets the maximum flits per packet. Must be > 0.
func (b MessageBuilder) WithMaxPacketSize(n int) MessageBuilder {
	b.maxPacketSize = n
	return b
}

// Build constructs the Message, splitting it into packets and flits.
// Panics if sizeFlits or maxPacketSize are non-positive — both are
// construction-time invariants, never expected runtime states.
func (b MessageBuilder) Build() *Message {
	if b.sizeFlits <= 0 {
		panic(fmt.Sprintf("message size must be > 0, got %d", b.sizeFlits))
	}

	if b.maxPacketSize <= 0 {
		panic(fmt.Sprintf("max packet size must be > 0, got %d", b.maxPacketSize))
	}

	numPackets := NumPackets(b.sizeFlits, b.maxPacketSize)

	msg := &Message{
		Opcode:        b.opcode,
		ProtocolClass: b.protocolClass,
		Transaction:   b.transaction,
		SourceID:      b.sourceID,
		DestID:        b.destID,
		sizeFlits:     b.sizeFlits,
	}

	if b.idGen != nil {
		msg.ID = b.idGen()
	}

	msg.Packets = make([]*Packet, numPackets)
	flitsLeft := b.sizeFlits

	for p := 0; p < numPackets; p++ {
		length := b.maxPacketSize
		if flitsLeft < length {
			length = flitsLeft
		}

		msg.Packets[p] = newPacket(p, length, msg)
		flitsLeft -= length
	}

	return msg
}

// NumPackets returns ceil(sizeFlits / maxPacketSize), the packet count
// invariant from spec §3.
func NumPackets(sizeFlits, maxPacketSize int) int {
	n := sizeFlits / maxPacketSize
	if sizeFlits%maxPacketSize > 0 {
		n++
	}

	return n
}
