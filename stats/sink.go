package stats

import (
	"github.com/sirupsen/logrus"

	"github.com/archfab/fabricsim/sim"
)

// Hookable is a ready-to-use sink target: a bare sim.HookableBase that
// satisfies invoker so it can be passed straight to NewMessageLog /
// NewTrafficLog.
type Hookable struct {
	sim.HookableBase
}

// NewHookable returns a fresh Hookable with no hooks registered yet.
func NewHookable() *Hookable {
	return &Hookable{}
}

// Recorder is an in-memory Hook that records every event it sees, for
// tests and for offline inspection rather than streaming output.
type Recorder struct {
	Started []TransactionEvent
	Logged  []MessageEvent
	Ended   []TransactionEvent
	Traffic []CrossbarEvent
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Func implements sim.Hook, branching on ctx.Pos.
func (r *Recorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosMessageStart:
		r.Started = append(r.Started, ctx.Item.(TransactionEvent))
	case HookPosMessageEnd:
		r.Ended = append(r.Ended, ctx.Item.(TransactionEvent))
	case HookPosMessageLog:
		r.Logged = append(r.Logged, ctx.Item.(MessageEvent))
	case HookPosTrafficLog:
		r.Traffic = append(r.Traffic, ctx.Item.(CrossbarEvent))
	}
}

// LogrusSink is a Hook that reports every event through a logrus logger at
// Debug level, the leveled-structured-logging ambient concern every other
// phase transition in this repo uses.
type LogrusSink struct {
	Logger *logrus.Logger
}

// NewLogrusSink wraps logger (logrus.StandardLogger() if nil) as a Hook.
func NewLogrusSink(logger *logrus.Logger) *LogrusSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &LogrusSink{Logger: logger}
}

// Func implements sim.Hook.
func (s *LogrusSink) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case TransactionEvent:
		s.Logger.WithField("transaction", item.TransactionID).Debug(ctx.Pos.Name)
	case MessageEvent:
		s.Logger.WithFields(logrus.Fields{
			"transaction": item.TransactionID,
			"source":      item.SourceID,
			"dest":        item.DestID,
			"size_flits":  item.SizeFlits,
		}).Debug(ctx.Pos.Name)
	case CrossbarEvent:
		s.Logger.WithFields(logrus.Fields{
			"device":      item.Device,
			"input_port":  item.InputPort,
			"input_vc":    item.InputVC,
			"output_port": item.OutputPort,
			"output_vc":   item.OutputVC,
			"flits":       item.Flits,
		}).Debug(ctx.Pos.Name)
	}
}
