package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/network/direct"
	"github.com/archfab/fabricsim/sim"
	"github.com/archfab/fabricsim/stats"
	"github.com/archfab/fabricsim/workload"
)

var (
	configPath string
	seed       int64
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "fabricsim",
	Short: "Cycle-approximate discrete-event simulator for interconnection networks",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a blast workload against a direct network to completion",
	RunE:  runFabricsim,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to the run's YAML configuration (required)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "master RNG seed; 0 reads FABRICSIM_SEED or falls back to the config file's seed")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "log level (trace, debug, info, warn, error, fatal, panic)")

	_ = runCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(runCmd)
}

// runFabricsim loads an environment overlay, parses the configuration
// file, wires the engine/network/workload together, and runs the
// simulation to quiescence.
func runFabricsim(cmd *cobra.Command, args []string) error {
	// Ignored when absent: godotenv overlays are optional, matching the
	// rest of the pack's use of dotenv files for local overrides only.
	_ = godotenv.Load()

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	tree, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", configPath, err)
	}

	effectiveSeed := seed
	if effectiveSeed == 0 {
		if raw := os.Getenv("FABRICSIM_SEED"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("FABRICSIM_SEED %q is not an integer: %w", raw, err)
			}
			effectiveSeed = parsed
		} else {
			effectiveSeed = int64(tree.OptionalInt("seed", 1))
		}
	}

	numTerminals := tree.RequireInt("num_terminals")
	channelPeriod := sim.Time(tree.OptionalInt("channel_period", 1))
	netLatency := sim.Time(tree.OptionalInt("network_latency", 1))
	distributed := tree.OptionalBool("distributed_ids", false)

	appSettings := tree.RequireSubSlice("applications")

	engine := sim.NewDiscreteEngine()
	channelClock := sim.NewClockDomain("channel", channelPeriod)

	idGen := sim.NewSequentialIDGenerator()
	if distributed {
		idGen = sim.NewDistributedIDGenerator()
	}

	net := direct.New("Net", engine, engine, numTerminals, netLatency, idGen)

	hookable := stats.NewHookable()
	hookable.AcceptHook(stats.NewLogrusSink(logrus.StandardLogger()))
	messageLog := stats.NewMessageLog(hookable)

	w := workload.New(workload.Config{
		Engine:       engine,
		ChannelClock: channelClock,
		Network:      net,
		TxAlloc:      &sim.TransactionAllocator{},
		IDGen:        idGen,
		RNG:          sim.NewRNGService(effectiveSeed),
		MessageLog:   messageLog,
	}, numTerminals, appSettings)

	logrus.WithFields(logrus.Fields{
		"seed":          effectiveSeed,
		"num_terminals": numTerminals,
		"applications":  len(appSettings),
	}).Info("fabricsim: starting run")

	started := time.Now()
	w.Start()

	if err := engine.Run(); err != nil {
		return fmt.Errorf("simulation run: %w", err)
	}

	engine.Finished()

	logrus.WithField("elapsed", time.Since(started)).Info("fabricsim: run complete")

	for i, app := range w.Applications() {
		logrus.WithFields(logrus.Fields{
			"application":     i,
			"percent_complete": app.PercentComplete(),
		}).Info("fabricsim: application summary")
	}

	return nil
}
