package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/network/direct"
	"github.com/archfab/fabricsim/sim"
	"github.com/archfab/fabricsim/stats"
)

type fakeWorkload struct {
	ready      []int
	complete   []int
	done       []int
	terminated []string
}

func (f *fakeWorkload) ApplicationReady(id int)    { f.ready = append(f.ready, id) }
func (f *fakeWorkload) ApplicationComplete(id int) { f.complete = append(f.complete, id) }
func (f *fakeWorkload) ApplicationDone(id int)     { f.done = append(f.done, id) }
func (f *fakeWorkload) Terminate(reason string)    { f.terminated = append(f.terminated, reason) }

func minimalApplicationSettings(numTerminals int, overrides map[string]interface{}) *config.Tree {
	m := map[string]interface{}{
		"warmup_threshold": 1.0,
		"blast_terminal": map[string]interface{}{
			"request_injection_rate":             0.0,
			"message_size_distribution":          "fixed",
			"message_size_distribution_settings": map[string]interface{}{"size": 4},
			"traffic_pattern":                    "uniform_random",
			"num_transactions":                   1,
			"max_packet_size":                    4,
			"transaction_size":                    1,
			"warmup_interval":                     0,
		},
	}

	for k, v := range overrides {
		m[k] = v
	}

	return config.Parse(m)
}

func newTestApplication(t *testing.T, numTerminals int, overrides map[string]interface{}) (*Application, *fakeWorkload, sim.Engine) {
	engine := sim.NewDiscreteEngine()
	clock := sim.NewClockDomain("channel", 1)
	net := direct.New("Net", engine, engine, numTerminals, 1, sim.NewSequentialIDGenerator())
	wl := &fakeWorkload{}

	app := NewApplication(ApplicationConfig{
		ID:           0,
		NumTerminals: numTerminals,
		Engine:       engine,
		ChannelClock: clock,
		Network:      net,
		Workload:     wl,
		TxAlloc:      &sim.TransactionAllocator{},
		IDGen:        sim.NewSequentialIDGenerator(),
		RNG:          rand.New(rand.NewSource(1)),
		MessageLog:   stats.NewMessageLog(stats.NewHookable()),
	}, minimalApplicationSettings(numTerminals, overrides))

	return app, wl, engine
}

func TestNewApplication_WarmupThresholdZero_ForceWarmsImmediately(t *testing.T) {
	app, wl, engine := newTestApplication(t, 2, map[string]interface{}{"warmup_threshold": 0.0})

	err := engine.Run()
	require.NoError(t, err)

	require.Len(t, wl.ready, 1)
	assert.Equal(t, 0, wl.ready[0])
	assert.True(t, app.doLogging)
}

func TestNewApplication_PanicsOnOutOfRangeWarmupThreshold(t *testing.T) {
	assert.Panics(t, func() {
		newTestApplication(t, 2, map[string]interface{}{"warmup_threshold": 1.5})
	})
}

func TestApplication_TerminalWarmed_CrossingThresholdEntersLogging(t *testing.T) {
	app, wl, _ := newTestApplication(t, 2, map[string]interface{}{
		"warmup_threshold": 0.5,
		"blast_terminal": map[string]interface{}{
			"request_injection_rate":             0.5,
			"message_size_distribution":          "fixed",
			"message_size_distribution_settings": map[string]interface{}{"size": 4},
			"traffic_pattern":                    "uniform_random",
			"num_transactions":                   1,
			"max_packet_size":                    4,
			"transaction_size":                    1,
			"warmup_interval":                     0,
		},
	})
	require.Equal(t, 2, app.activeTerminals)

	app.TerminalWarmed(0)

	require.Len(t, wl.ready, 1)
	assert.True(t, app.doLogging)
	assert.False(t, app.BypassedLogging())
}

func TestApplication_TerminalSaturated_DefaultPolicyDrainsWithoutLogging(t *testing.T) {
	app, wl, _ := newTestApplication(t, 1, map[string]interface{}{
		"warmup_threshold": 1.0,
		"blast_terminal": map[string]interface{}{
			"request_injection_rate":             0.5,
			"message_size_distribution":          "fixed",
			"message_size_distribution_settings": map[string]interface{}{"size": 4},
			"traffic_pattern":                    "uniform_random",
			"num_transactions":                   1,
			"max_packet_size":                    4,
			"transaction_size":                    1,
			"warmup_interval":                     0,
		},
	})

	app.TerminalSaturated(0)

	require.Len(t, wl.ready, 1)
	assert.False(t, app.doLogging)
	assert.True(t, app.BypassedLogging())
	assert.True(t, app.terminals[0].Done())
}

func TestApplication_TerminalSaturated_KillOnSaturationTerminates(t *testing.T) {
	app, wl, _ := newTestApplication(t, 1, map[string]interface{}{
		"warmup_threshold":   1.0,
		"kill_on_saturation": true,
		"blast_terminal": map[string]interface{}{
			"request_injection_rate":             0.5,
			"message_size_distribution":          "fixed",
			"message_size_distribution_settings": map[string]interface{}{"size": 4},
			"traffic_pattern":                    "uniform_random",
			"num_transactions":                   1,
			"max_packet_size":                    4,
			"transaction_size":                    1,
			"warmup_interval":                     0,
		},
	})

	app.TerminalSaturated(0)

	require.Len(t, wl.terminated, 1)
}

func TestApplication_Stop_BypassedLoggingCallsApplicationDoneDirectly(t *testing.T) {
	app, wl, _ := newTestApplication(t, 1, map[string]interface{}{
		"warmup_threshold": 1.0,
		"blast_terminal": map[string]interface{}{
			"request_injection_rate":             0.5,
			"message_size_distribution":          "fixed",
			"message_size_distribution_settings": map[string]interface{}{"size": 4},
			"traffic_pattern":                    "uniform_random",
			"num_transactions":                   1,
			"max_packet_size":                    4,
			"transaction_size":                    1,
			"warmup_interval":                     0,
		},
	})

	app.TerminalSaturated(0)
	app.Stop()

	require.Len(t, wl.done, 1)
	assert.Equal(t, 0, wl.done[0])
}

func TestApplication_PercentComplete_NoActiveTerminalsIsOne(t *testing.T) {
	app, _, _ := newTestApplication(t, 1, map[string]interface{}{
		"blast_terminal": map[string]interface{}{
			"request_injection_rate":             0.0,
			"message_size_distribution":          "fixed",
			"message_size_distribution_settings": map[string]interface{}{"size": 4},
			"traffic_pattern":                    "uniform_random",
			"num_transactions":                   1,
			"max_packet_size":                    4,
			"transaction_size":                    1,
			"warmup_interval":                     0,
		},
	})

	assert.Equal(t, 1.0, app.PercentComplete())
}

func TestApplication_TerminalComplete_AllActiveTerminalsMovesToBlabbing(t *testing.T) {
	app, wl, _ := newTestApplication(t, 1, map[string]interface{}{
		"warmup_threshold": 0.0,
		"blast_terminal": map[string]interface{}{
			"request_injection_rate":             0.5,
			"message_size_distribution":          "fixed",
			"message_size_distribution_settings": map[string]interface{}{"size": 4},
			"traffic_pattern":                    "uniform_random",
			"num_transactions":                   1,
			"max_packet_size":                    4,
			"transaction_size":                    1,
			"warmup_interval":                     0,
		},
	})

	app.TerminalWarmed(forceWarmedID)
	app.Start()

	app.TerminalComplete(0)

	require.Len(t, wl.complete, 1)
	assert.Equal(t, 0, wl.complete[0])
}
