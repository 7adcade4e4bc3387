package workload

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/netmsg"
	"github.com/archfab/fabricsim/network"
	"github.com/archfab/fabricsim/sim"
	"github.com/archfab/fabricsim/stats"
	"github.com/archfab/fabricsim/traffic"
	"github.com/archfab/fabricsim/traffic/msgsize"
)

const (
	requestOpcode  uint32 = 1
	responseOpcode uint32 = 2
)

// terminalApp is the slice of Application a Terminal calls back into. A
// real Application satisfies it; tests can hand in a fake.
type terminalApp interface {
	TerminalWarmed(id int)
	TerminalSaturated(id int)
	TerminalComplete(id int)
	TerminalDone(id int)
}

// Terminal is the blast workload's synthetic-traffic driver for one
// network interface: spec §4.4's BlastTerminal. It injects requests at a
// configured rate, tracks transactions to completion, and runs the
// warmup/saturation detector over the network's in-flight flit count.
type Terminal struct {
	*sim.ComponentBase

	id            int
	engine        sim.Engine
	channelClock  *sim.ClockDomain
	net           network.Network
	app           terminalApp
	txAlloc       *sim.TransactionAllocator
	idGen         sim.IDGenerator
	rng           *rand.Rand
	messageLog    stats.MessageLog

	trafficPattern traffic.Pattern
	sizeDist       msgsize.Distribution

	effectiveRate            float64
	numTransactions          int
	maxPacketSize            int
	transactionSize          int
	requestProtocolClass     uint32
	responseProtocolClass    uint32
	enableResponses          bool
	requestProcessingLatency sim.Time
	warmupInterval           int
	warmupWindow             int
	warmupAttempts           int

	state terminalState

	outstanding           netmsg.OutstandingTracker
	transactionsToLog      map[uint64]struct{}
	loggableCompleteCount int

	flitsReceived    int
	samples          []float64
	sampleTimes      []float64
	fastFailSample   float64
	fastFailComputed bool
	warmupAttemptsUsed int
}

// TerminalConfig is the static build-time input a Terminal needs beyond
// its own configuration tree — the pieces every terminal in a population
// shares.
type TerminalConfig struct {
	ID           int
	NumTerminals int
	Engine       sim.Engine
	ChannelClock *sim.ClockDomain
	Network      network.Network
	App          terminalApp
	TxAlloc      *sim.TransactionAllocator
	IDGen        sim.IDGenerator
	RNG          *rand.Rand
	MessageLog   stats.MessageLog
}

// NewTerminal builds a Terminal from settings, validates its constraints,
// and registers it with build.Network so the network can deliver to it.
// Missing required settings are fatal at construction, per spec §6/§7.1.
func NewTerminal(build TerminalConfig, settings *config.Tree) *Terminal {
	rate := settings.RequireFloat("request_injection_rate")
	if rate < 0 || rate > 1 {
		panic(fmt.Sprintf("terminal %d: request_injection_rate %f out of [0,1]", build.ID, rate))
	}

	if path, ok := relativeInjectionPath(settings); ok {
		rate *= loadRelativeInjection(path, build.ID)
	}

	sizeRNG := rand.New(rand.NewSource(build.RNG.Int63()))
	baseDist := msgsize.New(
		settings.RequireString("message_size_distribution"),
		settings.RequireSub("message_size_distribution_settings"),
		sizeRNG,
	)

	enableResponses := settings.OptionalBool("enable_responses", false)

	dist := baseDist
	if enableResponses {
		dist = msgsize.NewRequestEcho(baseDist, settings.OptionalFloat("response_ratio", 1.0))
	}

	warmupInterval := settings.OptionalInt("warmup_interval", 0)
	maxFlitsPerMessage := dist.MaxMessageSize()
	if warmupInterval != 0 && (warmupInterval < 2*maxFlitsPerMessage || warmupInterval < 100) {
		panic(fmt.Sprintf(
			"terminal %d: warmup_interval %d must be 0 or >= max(2*%d, 100)",
			build.ID, warmupInterval, maxFlitsPerMessage))
	}

	warmupWindow := settings.OptionalInt("warmup_window", 5)
	if warmupWindow < 5 {
		panic(fmt.Sprintf("terminal %d: warmup_window must be >= 5, got %d", build.ID, warmupWindow))
	}

	warmupAttempts := settings.OptionalInt("warmup_attempts", 1)
	if warmupAttempts <= 0 {
		panic(fmt.Sprintf("terminal %d: warmup_attempts must be > 0, got %d", build.ID, warmupAttempts))
	}

	trafficRNG := rand.New(rand.NewSource(build.RNG.Int63()))

	t := &Terminal{
		ComponentBase: sim.NewComponentBase(fmt.Sprintf("Terminal[%d]", build.ID)),

		id:           build.ID,
		engine:       build.Engine,
		channelClock: build.ChannelClock,
		net:          build.Network,
		app:          build.App,
		txAlloc:      build.TxAlloc,
		idGen:        build.IDGen,
		rng:          rand.New(rand.NewSource(build.RNG.Int63())),
		messageLog:   build.MessageLog,

		trafficPattern: traffic.New(
			settings.RequireString("traffic_pattern"),
			build.NumTerminals, build.ID,
			settings.OptionalSub("traffic_pattern_settings", config.Parse(nil)),
			trafficRNG,
		),
		sizeDist: dist,

		effectiveRate:            rate,
		numTransactions:          settings.RequireInt("num_transactions"),
		maxPacketSize:            settings.RequireInt("max_packet_size"),
		transactionSize:          settings.RequireInt("transaction_size"),
		requestProtocolClass:     uint32(settings.OptionalInt("request_protocol_class", 0)),
		responseProtocolClass:    uint32(settings.OptionalInt("response_protocol_class", 0)),
		enableResponses:          enableResponses,
		requestProcessingLatency: sim.Time(settings.OptionalInt("request_processing_latency", 0)),
		warmupInterval:           warmupInterval,
		warmupWindow:             warmupWindow,
		warmupAttempts:           warmupAttempts,

		transactionsToLog: make(map[uint64]struct{}),
	}

	build.Network.RegisterRecipient(build.ID, t)

	return t
}

func relativeInjectionPath(settings *config.Tree) (string, bool) {
	path := settings.OptionalString("relative_injection", "")
	return path, path != ""
}

// InjectionRate reports this terminal's effective (post relative-injection)
// injection rate, in flits per channel cycle.
func (t *Terminal) InjectionRate() float64 { return t.effectiveRate }

// Start kicks off the terminal's pacing loop with the startup jitter spec
// §4.4 describes. A rate of zero never schedules anything.
func (t *Terminal) Start() {
	if t.effectiveRate <= 0 {
		return
	}

	jitterRange := cyclesToSend(t.effectiveRate, t.sizeDist.MaxMessageSize()*t.transactionSize)
	jitterCycles := 1 + t.rng.Intn(3*jitterRange+1)

	t.scheduleRequestIn(jitterCycles)
}

// StopWarming forces the terminal out of WARMING without running the
// detector further, used when the application's warmup threshold is
// crossed by other terminals before this one individually warmed.
func (t *Terminal) StopWarming() {
	if t.state == warming {
		t.state = warmBlabbing
	}
}

// StartLogging transitions WARM_BLABBING (or a forced WARMING) into
// LOGGING. A terminal with a positive rate and zero configured
// transactions completes the instant it starts logging — recovered from
// the original implementation's startLogging().
func (t *Terminal) StartLogging() {
	t.state = logging

	if t.effectiveRate > 0 && t.numTransactions == 0 {
		t.app.TerminalComplete(t.id)
	}
}

// StopLogging transitions LOGGING into LOG_BLABBING. A terminal with
// nothing left to log is immediately done — recovered from the original
// implementation's stopLogging().
func (t *Terminal) StopLogging() {
	t.state = logBlabbing

	if t.numTransactions == 0 || len(t.transactionsToLog) == 0 {
		t.app.TerminalDone(t.id)
	}
}

// Drain transitions directly to DRAINING, the saturation "otherwise"
// policy's bypass of LOGGING/BLABBING entirely.
func (t *Terminal) Drain() {
	t.state = draining
}

// PercentComplete returns 0 below LOGGING, 1.0 once num_transactions == 0,
// else the fraction of tagged transactions completed so far — recovered
// from the original implementation's percentComplete().
func (t *Terminal) PercentComplete() float64 {
	if t.state < logging {
		return 0
	}

	if t.numTransactions == 0 {
		return 1.0
	}

	completed := t.loggableCompleteCount
	if completed > t.numTransactions {
		completed = t.numTransactions
	}

	return float64(completed) / float64(t.numTransactions)
}

// Done reports whether the terminal has reached DRAINING.
func (t *Terminal) Done() bool { return t.state == draining }

type requestPayload struct{}

type responsePayload struct {
	request *netmsg.Message
}

// Handle dispatches the terminal's own scheduled events.
func (t *Terminal) Handle(e sim.Event) error {
	switch payload := e.Payload().(type) {
	case requestPayload:
		t.startTransaction()
	case responsePayload:
		t.sendResponse(payload.request)
	default:
		panic(fmt.Sprintf("terminal %d: unexpected event payload %T", t.id, e.Payload()))
	}

	return nil
}

// startTransaction implements spec §4.4's request-generation steps. It is
// a no-op once the terminal has reached DRAINING.
func (t *Terminal) startTransaction() {
	if t.state >= draining {
		return
	}

	dest := t.trafficPattern.NextDestination()
	messageSize := t.sizeDist.NextMessageSize()
	tid := t.txAlloc.Allocate()

	t.outstanding.Start(tid, t.transactionSize)

	tagged := t.state == logging
	if tagged {
		t.transactionsToLog[tid] = struct{}{}
		t.messageLog.StartTransaction(tid)
	}

	for i := 0; i < t.transactionSize; i++ {
		msg := netmsg.NewMessageBuilder(t.idGen.Generate).
			WithOpcode(requestOpcode).
			WithProtocolClass(t.requestProtocolClass).
			WithTransaction(tid).
			WithSource(t.id).
			WithDest(dest).
			WithSizeFlits(messageSize).
			WithMaxPacketSize(t.maxPacketSize).
			Build()

		if tagged {
			t.messageLog.LogMessage(tid, t.id, dest, messageSize)
		}

		t.net.SendMessage(msg, dest)
	}

	t.scheduleNextRequest(messageSize)
}

// sendResponse implements spec §4.4's response path: a response to
// request, addressed back to the request's source, sized by the
// conditional distribution.
func (t *Terminal) sendResponse(request *netmsg.Message) {
	size := t.sizeDist.NextResponseSize(request.SizeFlits())

	msg := netmsg.NewMessageBuilder(t.idGen.Generate).
		WithOpcode(responseOpcode).
		WithProtocolClass(t.responseProtocolClass).
		WithTransaction(request.Transaction).
		WithSource(t.id).
		WithDest(request.SourceID).
		WithSizeFlits(size).
		WithMaxPacketSize(t.maxPacketSize).
		Build()

	t.net.SendMessage(msg, request.SourceID)
}

// cyclesToSend implements the pacing law: ceil(flits/rate). Callers must
// check rate > 0 first; for rate <= 0 the result is not meaningful.
func cyclesToSend(rate float64, flits int) int {
	return int(math.Ceil(float64(flits) / rate))
}

func (t *Terminal) scheduleNextRequest(lastSizeFlits int) {
	if t.effectiveRate <= 0 {
		return
	}

	cycles := cyclesToSend(t.effectiveRate, lastSizeFlits)
	if cycles == 0 {
		t.startTransaction()
		return
	}

	t.scheduleRequestIn(cycles)
}

func (t *Terminal) scheduleRequestIn(cycles int) {
	at := t.engine.CurrentTime() + sim.Time(cycles)*t.channelClock.Period()
	t.engine.Schedule(sim.NewEventBase(at, t, requestPayload{}))
}

// HandleReceivedMessage implements network.Recipient: this terminal is the
// message's destination.
func (t *Terminal) HandleReceivedMessage(msg *netmsg.Message) {
	t.sampleWarmup(msg.SizeFlits())

	if msg.Opcode == requestOpcode {
		if t.enableResponses {
			t.scheduleResponse(msg)
		}
		return
	}

	last := t.outstanding.Complete(msg.Transaction)
	t.completeLoggable(msg.Transaction, last)
}

// HandleDeliveredMessage implements network.Recipient: this terminal is
// the message's source, and the network confirms it arrived.
func (t *Terminal) HandleDeliveredMessage(msg *netmsg.Message) {
	if msg.Opcode != requestOpcode || t.enableResponses {
		return
	}

	last := t.outstanding.Complete(msg.Transaction)
	t.completeLoggable(msg.Transaction, last)
}

func (t *Terminal) scheduleResponse(request *netmsg.Message) {
	at := t.engine.CurrentTime() + t.requestProcessingLatency
	t.engine.Schedule(sim.NewEventBase(at, t, responsePayload{request: request}))
}

// completeLoggable implements spec §4.4's completeLoggable: only a tagged
// transaction's last message drives logging/application notifications.
func (t *Terminal) completeLoggable(tid uint64, lastMessageOfTransaction bool) {
	if !lastMessageOfTransaction {
		return
	}

	if _, tagged := t.transactionsToLog[tid]; tagged {
		delete(t.transactionsToLog, tid)
		t.messageLog.EndTransaction(tid)
		t.loggableCompleteCount++

		if t.loggableCompleteCount == t.numTransactions {
			t.app.TerminalComplete(t.id)
		}
	}

	if t.state == logBlabbing && len(t.transactionsToLog) == 0 {
		t.app.TerminalDone(t.id)
	}
}

// sampleWarmup implements spec §4.4's warmup/saturation detector. Only
// active while WARMING; a no-op in every other state.
func (t *Terminal) sampleWarmup(deliveredFlits int) {
	if t.state != warming {
		return
	}

	if t.warmupInterval == 0 {
		t.transitionWarmed()
		return
	}

	t.flitsReceived += deliveredFlits
	for t.flitsReceived >= t.warmupInterval {
		t.flitsReceived -= t.warmupInterval
		t.takeWarmupSample()

		if t.state != warming {
			return
		}
	}
}

func (t *Terminal) takeWarmupSample() {
	_, _, flits := t.net.EnrouteCount()
	sample := float64(flits)
	now := float64(t.engine.CurrentTime())

	if len(t.samples) < t.warmupWindow {
		t.samples = append(t.samples, sample)
		t.sampleTimes = append(t.sampleTimes, now)

		if len(t.samples) == t.warmupWindow {
			t.fastFailSample = maxOf(t.samples)
			t.fastFailComputed = true
		}

		return
	}

	t.samples = append(t.samples[1:], sample)
	t.sampleTimes = append(t.sampleTimes[1:], now)

	if t.fastFailComputed && sample > 3*t.fastFailSample {
		t.transitionSaturated()
		return
	}

	t.warmupAttemptsUsed++

	_, slope := stat.LinearRegression(t.sampleTimes, t.samples, nil, false)
	if slope <= 0 {
		t.transitionWarmed()
		return
	}

	if t.warmupAttemptsUsed >= t.warmupAttempts {
		t.transitionSaturated()
	}
}

func (t *Terminal) transitionWarmed() {
	t.state = warmBlabbing
	t.app.TerminalWarmed(t.id)
}

func (t *Terminal) transitionSaturated() {
	t.state = warmBlabbing
	t.app.TerminalSaturated(t.id)
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}

	return m
}
