package workload

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/network"
	"github.com/archfab/fabricsim/sim"
	"github.com/archfab/fabricsim/stats"
)

// Workload owns a population of Applications and drives the run to
// completion: it is the outer boundary spec §4.5's "workload" reports up
// to, and the home for the run's exit policy (spec §4.5, §9).
type Workload struct {
	engine sim.Engine

	applications []*Application

	completeCount int
	doneCount     int
	terminated    bool
}

// Config is the build-time input a Workload needs to construct its
// Applications.
type Config struct {
	Engine       sim.Engine
	ChannelClock *sim.ClockDomain
	Network      network.Network
	TxAlloc      *sim.TransactionAllocator
	IDGen        sim.IDGenerator
	RNG          *sim.RNGService
	MessageLog   stats.MessageLog
}

// New builds one Application per entry in appSettings, each with
// numTerminals interfaces, wired to build's shared collaborators. Each
// application draws from its own named RNG subsystem
// ("application-<id>"), so adding or removing an application never
// perturbs another application's stream.
func New(build Config, numTerminals int, appSettings []*config.Tree) *Workload {
	w := &Workload{
		engine: build.Engine,
	}

	for i, settings := range appSettings {
		app := NewApplication(ApplicationConfig{
			ID:           i,
			NumTerminals: numTerminals,
			Engine:       build.Engine,
			ChannelClock: build.ChannelClock,
			Network:      build.Network,
			Workload:     w,
			TxAlloc:      build.TxAlloc,
			IDGen:        build.IDGen,
			RNG:          build.RNG.ForSubsystem(fmt.Sprintf("application-%d", i)),
			MessageLog:   build.MessageLog,
		}, settings)

		w.applications = append(w.applications, app)
	}

	return w
}

// Start kicks off every application's terminals into WARMING. Callers
// invoke this once before running the engine.
func (w *Workload) Start() {
	for _, app := range w.applications {
		app.StartWarming()
	}
}

// Applications returns the workload's populated Applications, in id
// order, for reporting once the run has finished.
func (w *Workload) Applications() []*Application {
	return w.applications
}

// ApplicationReady implements workloadCoordinator: an Application has
// entered LOGGING, or bypassed straight to DRAINING under saturation.
// The bypass case needs an immediate Stop to actually reach
// ApplicationDone, since Start is a no-op when doLogging is false.
func (w *Workload) ApplicationReady(id int) {
	logrus.WithField("application", id).Debug("workload: application ready")

	app := w.applications[id]
	app.Start()

	if app.BypassedLogging() {
		app.Stop()
	}
}

// ApplicationComplete implements workloadCoordinator: an Application
// finished LOGGING and moved into BLABBING.
func (w *Workload) ApplicationComplete(id int) {
	w.completeCount++

	logrus.WithFields(logrus.Fields{
		"application": id,
		"complete":    w.completeCount,
		"total":       len(w.applications),
	}).Debug("workload: application complete")

	w.applications[id].Stop()
}

// ApplicationDone implements workloadCoordinator: an Application has
// nothing left to log or drain. Once every application is done the run
// itself is finished and the engine is asked to exit.
func (w *Workload) ApplicationDone(id int) {
	w.doneCount++

	logrus.WithFields(logrus.Fields{
		"application": id,
		"done":        w.doneCount,
		"total":       len(w.applications),
	}).Info("workload: application done")

	if w.doneCount >= len(w.applications) {
		w.engine.Exit()
	}
}

// Terminate implements workloadCoordinator: an application requested an
// early, out-of-band stop (kill_on_saturation, spec §4.5/§9). Routed
// through atexit rather than a raw os.Exit so registered cleanup handlers
// still run before the process exits with status 0 — grounded on akita's
// own noc/acceptance harness use of tebeka/atexit. Tests observe the
// decision through a fake workloadCoordinator, not through this method.
func (w *Workload) Terminate(reason string) {
	if w.terminated {
		return
	}
	w.terminated = true

	logrus.WithField("reason", reason).Warn("workload: terminating early")

	w.engine.Exit()
	atexit.Exit(0)
}
