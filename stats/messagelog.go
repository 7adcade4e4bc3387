// Package stats defines the write-only statistics-sink boundary spec §6
// names — messageLog.{startTransaction,logMessage,endTransaction} and
// trafficLog.log(...) — as sim.Hook positions a terminal or router invokes,
// plus a couple of concrete sinks (an in-memory recorder for tests, a
// logrus-backed sink for real runs).
package stats

import "github.com/archfab/fabricsim/sim"

// HookPosMessageStart fires when a transaction tagged for logging begins.
var HookPosMessageStart = &sim.HookPos{Name: "MessageLog.StartTransaction"}

// HookPosMessageLog fires once per message handed to the network.
var HookPosMessageLog = &sim.HookPos{Name: "MessageLog.LogMessage"}

// HookPosMessageEnd fires when a logged transaction completes.
var HookPosMessageEnd = &sim.HookPos{Name: "MessageLog.EndTransaction"}

// TransactionEvent is the Item carried by HookPosMessageStart/HookPosMessageEnd.
type TransactionEvent struct {
	TransactionID uint64
}

// MessageEvent is the Item carried by HookPosMessageLog.
type MessageEvent struct {
	TransactionID uint64
	SourceID      int
	DestID        int
	SizeFlits     int
}

// invoker is satisfied by sim.HookableBase's promoted InvokeHook method.
type invoker interface {
	sim.Hookable
	InvokeHook(ctx sim.HookCtx)
}

// MessageLog is the narrow write-only interface a terminal invokes; it
// wraps a Hookable that has sinks registered at
// HookPosMessageStart/Log/End, so callers pass "the message log" as a
// single value instead of three separate hookables.
type MessageLog struct {
	sink invoker
}

// NewMessageLog wraps a Hookable that has sinks registered at
// HookPosMessageStart/Log/End.
func NewMessageLog(sink invoker) MessageLog {
	return MessageLog{sink: sink}
}

func (m MessageLog) invoke(pos *sim.HookPos, item interface{}) {
	m.sink.InvokeHook(sim.HookCtx{Domain: m.sink, Pos: pos, Item: item})
}

// StartTransaction records that transaction id has been tagged for logging.
func (m MessageLog) StartTransaction(id uint64) {
	m.invoke(HookPosMessageStart, TransactionEvent{TransactionID: id})
}

// LogMessage records one message sent under a logged transaction.
func (m MessageLog) LogMessage(id uint64, sourceID, destID, sizeFlits int) {
	m.invoke(HookPosMessageLog, MessageEvent{
		TransactionID: id,
		SourceID:      sourceID,
		DestID:        destID,
		SizeFlits:     sizeFlits,
	})
}

// EndTransaction records that a logged transaction has completed.
func (m MessageLog) EndTransaction(id uint64) {
	m.invoke(HookPosMessageEnd, TransactionEvent{TransactionID: id})
}
