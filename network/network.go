// Package network declares the network collaborator contract a workload
// consumes: address translation, asynchronous message delivery, and the
// in-flight sampling the warmup detector needs. A concrete transport
// (folded Clos, dragonfly, torus, hyperX) implements Network; network/direct
// provides a minimal reference implementation for tests.
package network

import "github.com/archfab/fabricsim/netmsg"

// Recipient is a terminal that a Network delivers to. HandleReceivedMessage
// is called on a message's destination once it arrives. HandleDeliveredMessage
// is called on a message's source once the network confirms delivery,
// regardless of whether a response follows — the blast terminal's
// completeTracking path decides what that confirmation means.
type Recipient interface {
	HandleReceivedMessage(msg *netmsg.Message)
	HandleDeliveredMessage(msg *netmsg.Message)
}

// Network is the collaborator a terminal population sends through.
type Network interface {
	// TranslateInterfaceIDToAddress returns the topological address tuple
	// (e.g. router coordinates plus a concentration index) for a terminal's
	// flat interface ID.
	TranslateInterfaceIDToAddress(id int) []int

	// NumInterfaces returns the number of terminal-facing interfaces.
	NumInterfaces() int

	// NumRouters returns the number of routing elements in the topology.
	NumRouters() int

	// SendMessage asynchronously injects msg toward the terminal at dest,
	// returning the message's ID. The network later calls
	// HandleReceivedMessage on dest's Recipient and HandleDeliveredMessage
	// on msg's source's Recipient.
	SendMessage(msg *netmsg.Message, dest int) string

	// EnrouteCount reports the number of messages, packets, and flits
	// currently in flight, sampled by the warmup/saturation detector.
	EnrouteCount() (messages, packets, flits int)

	// RegisterRecipient attaches the Recipient for a terminal's interface
	// ID, so the network knows who to call back.
	RegisterRecipient(id int, r Recipient)
}
