// Package netmsg implements the message/packet/flit factory described in
// spec §3/§4.4: the three-level nested structure a terminal builds to feed
// the network, grounded on akita's sim.Msg/MsgMeta and noc/messaging.Flit.
package netmsg

// Flit is the smallest flow-control unit of a Packet.
type Flit struct {
	Index  int
	Head   bool
	Tail   bool
	Packet *Packet
}
