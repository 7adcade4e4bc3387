package stats

import "github.com/archfab/fabricsim/sim"

// HookPosTrafficLog fires once per TrafficLog.Log call, each recording a
// number of flits crossing a router's internal crossbar, the
// trafficLog.log(...) sink spec §6 names.
var HookPosTrafficLog = &sim.HookPos{Name: "TrafficLog.Log"}

// CrossbarEvent is the Item carried by HookPosTrafficLog.
type CrossbarEvent struct {
	Device     string
	InputPort  int
	InputVC    int
	OutputPort int
	OutputVC   int
	Flits      int
}

// TrafficLog is the narrow write-only interface a router invokes to record
// crossbar traversals.
type TrafficLog struct {
	sink invoker
}

// NewTrafficLog wraps a Hookable that has a sink registered at
// HookPosTrafficLog.
func NewTrafficLog(sink invoker) TrafficLog {
	return TrafficLog{sink: sink}
}

// Log records flits crossing device from (inputPort, inputVC) to
// (outputPort, outputVC).
func (t TrafficLog) Log(device string, inputPort, inputVC, outputPort, outputVC, flits int) {
	t.sink.InvokeHook(sim.HookCtx{
		Domain: t.sink,
		Pos:    HookPosTrafficLog,
		Item: CrossbarEvent{
			Device:     device,
			InputPort:  inputPort,
			InputVC:    inputVC,
			OutputPort: outputPort,
			OutputVC:   outputVC,
			Flits:      flits,
		},
	})
}
