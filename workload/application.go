package workload

import (
	"fmt"
	"math/rand"

	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/network"
	"github.com/archfab/fabricsim/sim"
	"github.com/archfab/fabricsim/stats"
)

// workloadCoordinator is the slice of Workload an Application reports up
// to — applicationReady/Complete/Done, spec §4.5's outer boundary, plus
// Terminate for the kill_on_saturation exit policy.
type workloadCoordinator interface {
	ApplicationReady(id int)
	ApplicationComplete(id int)
	ApplicationDone(id int)
	Terminate(reason string)
}

// forceWarmedID is the sentinel terminal id the ForceWarmed event carries;
// it is exempt from the warmedTerminals counter, recovered from the
// original implementation so the warmup-threshold-zero path never inflates
// the count toward a threshold it didn't earn.
const forceWarmedID = -1

// Application aggregates a population of Terminals: spec §4.5's
// WARMING -> LOGGING -> BLABBING -> DRAINING lifecycle, with saturation
// able to bypass straight from WARMING into LOGGING or DRAINING.
type Application struct {
	*sim.ComponentBase

	id      int
	engine  sim.Engine
	workload workloadCoordinator

	killOnSaturation   bool
	logDuringSaturation bool
	maxSaturationCycles sim.Time
	warmupThreshold     float64

	terminals       []*Terminal
	activeTerminals int

	state applicationState

	warmedTerminals    int
	saturatedTerminals int
	completeTerminals  int
	doneTerminals      int

	doLogging bool
}

// ApplicationConfig is the build-time input an Application needs beyond
// its own configuration tree.
type ApplicationConfig struct {
	ID           int
	NumTerminals int
	Engine       sim.Engine
	ChannelClock *sim.ClockDomain
	Network      network.Network
	Workload     workloadCoordinator
	TxAlloc      *sim.TransactionAllocator
	IDGen        sim.IDGenerator
	RNG          *rand.Rand
	MessageLog   stats.MessageLog
}

// NewApplication builds an Application and one Terminal per interface id
// in [0, NumTerminals), per spec §4.5's lifecycle "construct one
// BlastTerminal per interface-id."
func NewApplication(build ApplicationConfig, settings *config.Tree) *Application {
	logDuringSaturation := settings.OptionalBool("log_during_saturation", false)

	var maxSaturationCycles sim.Time
	if logDuringSaturation {
		maxSaturationCycles = sim.Time(settings.RequireInt("max_saturation_cycles"))
	}

	warmupThreshold := settings.RequireFloat("warmup_threshold")
	if warmupThreshold < 0 || warmupThreshold > 1 {
		panic(fmt.Sprintf("application %d: warmup_threshold %f out of [0,1]", build.ID, warmupThreshold))
	}

	app := &Application{
		ComponentBase: sim.NewComponentBase(fmt.Sprintf("Application[%d]", build.ID)),

		id:       build.ID,
		engine:   build.Engine,
		workload: build.Workload,

		killOnSaturation:    settings.OptionalBool("kill_on_saturation", false),
		logDuringSaturation: logDuringSaturation,
		maxSaturationCycles: maxSaturationCycles,
		warmupThreshold:     warmupThreshold,
	}

	terminalSettings := settings.RequireSub("blast_terminal")

	for i := 0; i < build.NumTerminals; i++ {
		term := NewTerminal(TerminalConfig{
			ID:           i,
			NumTerminals: build.NumTerminals,
			Engine:       build.Engine,
			ChannelClock: build.ChannelClock,
			Network:      build.Network,
			App:          app,
			TxAlloc:      build.TxAlloc,
			IDGen:        build.IDGen,
			RNG:          build.RNG,
			MessageLog:   build.MessageLog,
		}, terminalSettings)

		app.AddChild(term)
		app.terminals = append(app.terminals, term)

		if term.InjectionRate() > 0 {
			app.activeTerminals++
		}
	}

	if warmupThreshold == 0 {
		app.scheduleForceWarmed()
	}

	return app
}

type forceWarmedPayload struct{}

type maxSaturationPayload struct{}

// Handle dispatches the application's own scheduled events: ForceWarmed
// and MaxSaturation, spec §4.5/§9's only two wall-cycle timeouts.
func (a *Application) Handle(e sim.Event) error {
	switch e.Payload().(type) {
	case forceWarmedPayload:
		a.TerminalWarmed(forceWarmedID)
	case maxSaturationPayload:
		a.onMaxSaturation()
	default:
		panic(fmt.Sprintf("application %d: unexpected event payload %T", a.id, e.Payload()))
	}

	return nil
}

func (a *Application) scheduleForceWarmed() {
	a.engine.Schedule(sim.NewEventBase(a.engine.CurrentTime(), a, forceWarmedPayload{}))
}

// StartWarming kicks off every terminal's pacing loop, entering WARMING at
// simulated time zero. Called once by the workload at the start of a run.
func (a *Application) StartWarming() {
	for _, term := range a.terminals {
		term.Start()
	}
}

// Start is invoked by the workload once ApplicationReady fires: it enters
// every terminal into LOGGING, since doLogging was latched true on the
// warmup-threshold transition.
func (a *Application) Start() {
	if !a.doLogging {
		return
	}

	for _, term := range a.terminals {
		term.StartLogging()
	}
}

// Stop is invoked by the workload once ApplicationComplete fires. When
// the application never actually logged (the saturation-drain bypass),
// stop notifies the workload directly instead of touching terminals —
// recovered from the original implementation's stop().
func (a *Application) Stop() {
	if !a.doLogging {
		a.workload.ApplicationDone(a.id)
		return
	}

	for _, term := range a.terminals {
		term.StopLogging()
	}
}

// TerminalWarmed implements terminalApp: a terminal (or the ForceWarmed
// sentinel) has individually warmed.
func (a *Application) TerminalWarmed(id int) {
	if id != forceWarmedID {
		a.warmedTerminals++
	}

	if a.state != appWarming {
		return
	}

	if a.activeTerminals == 0 || float64(a.warmedTerminals)/float64(a.activeTerminals) >= a.warmupThreshold {
		a.enterLogging()
	}
}

func (a *Application) enterLogging() {
	a.state = appLogging
	a.doLogging = true

	for _, term := range a.terminals {
		term.StopWarming()
	}

	a.workload.ApplicationReady(a.id)
}

// TerminalSaturated implements terminalApp: a terminal's warmup detector
// flagged saturation.
func (a *Application) TerminalSaturated(id int) {
	a.saturatedTerminals++

	if a.state != appWarming {
		return
	}

	if float64(a.saturatedTerminals)/float64(a.activeTerminals) <= 1-a.warmupThreshold {
		return
	}

	switch {
	case a.killOnSaturation:
		a.workload.Terminate(fmt.Sprintf("application %d saturated", a.id))
	case a.logDuringSaturation:
		a.state = appLogging
		a.doLogging = true

		for _, term := range a.terminals {
			term.StopWarming()
		}

		a.engine.Schedule(sim.NewEventBase(a.engine.CurrentTime()+a.maxSaturationCycles, a, maxSaturationPayload{}))
		a.workload.ApplicationReady(a.id)
	default:
		a.state = appDraining
		a.doLogging = false

		for _, term := range a.terminals {
			term.StopWarming()
			term.Drain()
		}

		a.workload.ApplicationReady(a.id)
	}
}

func (a *Application) onMaxSaturation() {
	if a.state != appLogging {
		return
	}

	a.state = appBlabbing
	a.workload.ApplicationComplete(a.id)
}

// TerminalComplete implements terminalApp: a terminal finished every
// tagged transaction it owed.
func (a *Application) TerminalComplete(id int) {
	a.completeTerminals++

	if a.state == appLogging && a.completeTerminals >= a.activeTerminals {
		a.state = appBlabbing
		a.workload.ApplicationComplete(a.id)
	}
}

// TerminalDone implements terminalApp: a terminal has nothing left to log
// or drain.
func (a *Application) TerminalDone(id int) {
	a.doneTerminals++

	if a.doneTerminals >= a.activeTerminals {
		a.state = appDraining
		a.workload.ApplicationDone(a.id)
	}
}

// BypassedLogging reports whether the application reached ApplicationReady
// through the saturation "otherwise" policy, which skips LOGGING/BLABBING
// entirely — the workload uses this to call Stop immediately instead of
// Start.
func (a *Application) BypassedLogging() bool {
	return !a.doLogging
}

// PercentComplete is the mean of the terminals' PercentComplete over
// activeTerminals, per spec §4.5.
func (a *Application) PercentComplete() float64 {
	if a.activeTerminals == 0 {
		return 1.0
	}

	sum := 0.0
	for _, term := range a.terminals {
		sum += term.PercentComplete()
	}

	return sum / float64(a.activeTerminals)
}
