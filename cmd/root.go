package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/overlaysim/overlaysim/sim/config"
	"github.com/overlaysim/overlaysim/sim/metrics"
	"github.com/overlaysim/overlaysim/sim/trace"
)

var (
	// CLI flags for the run command
	scenarioPath string // Scenario YAML file
	seed         int64  // Overrides the scenario seed when set
	logLevel     string // Log verbosity level
	traceLevel   string // Observation trace level
	traceOut     string // Trace YAML output path
	metricsOut   string // Prometheus text exposition output path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "overlaysim",
	Short: "Cycle- and event-driven simulator for peer-to-peer overlays",
}

// runCmd executes every experiment of a scenario file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		sc, err := config.LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cmd.Flags().Changed("seed") {
			logrus.Infof("seed overridden: %d -> %d", sc.Seed, seed)
			sc.Seed = seed
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q; valid: none, observations", traceLevel)
		}
		if traceOut != "" && (traceLevel == "" || traceLevel == string(trace.TraceLevelNone)) {
			traceLevel = string(trace.TraceLevelObservations)
		}

		st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		reg := prometheus.NewRegistry()
		runner, err := config.NewRunner(sc, config.Options{Trace: st, Metrics: metrics.NewEngine(reg)})
		if err != nil {
			logrus.Fatalf("Invalid scenario %s: %v", scenarioPath, err)
		}

		startTime := time.Now()
		results, err := runner.Run()
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		printResults(os.Stdout, sc, results, trace.Summarize(st), time.Since(startTime))

		if traceOut != "" {
			if err := writeFile(traceOut, st.WriteYAML); err != nil {
				logrus.Fatalf("Writing trace: %v", err)
			}
			logrus.Infof("trace written to %s", traceOut)
		}
		if metricsOut != "" {
			if err := writeFile(metricsOut, func(w io.Writer) error { return metrics.WriteText(w, reg) }); err != nil {
				logrus.Fatalf("Writing metrics: %v", err)
			}
			logrus.Infof("metrics written to %s", metricsOut)
		}
		logrus.Info("Simulation complete.")
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&scenarioPath, "config", "", "Path to scenario YAML file")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (overrides the scenario seed)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Observation trace level (none, observations)")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the observation trace as YAML to this file")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write engine metrics in Prometheus text format to this file")
	_ = runCmd.MarkFlagRequired("config")

	validateCmd.Flags().StringVar(&scenarioPath, "config", "", "Path to scenario YAML file")
	_ = validateCmd.MarkFlagRequired("config")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exampleCmd)
}
