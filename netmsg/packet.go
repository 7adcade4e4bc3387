package netmsg

// Packet is a contiguous run of Flits, exactly one of which is the head
// (index 0) and exactly one the tail (index Length-1), per spec §3.
type Packet struct {
	Index   int
	Message *Message
	Flits   []*Flit
}

// Length returns the number of flits in the packet.
func (p *Packet) Length() int {
	return len(p.Flits)
}

func newPacket(index int, length int, msg *Message) *Packet {
	p := &Packet{Index: index, Message: msg}
	p.Flits = make([]*Flit, length)

	for f := 0; f < length; f++ {
		p.Flits[f] = &Flit{
			Index:  f,
			Head:   f == 0,
			Tail:   f == length-1,
			Packet: p,
		}
	}

	return p
}
