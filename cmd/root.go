package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/nic-sched-sim/nic-sched-sim/sim"
	"github.com/nic-sched-sim/nic-sched-sim/sim/harness"
	"github.com/nic-sched-sim/nic-sched-sim/sim/workload"
)

var (
	// CLI flags for the run command
	seed     int64  // Overrides the configured seed when set
	logLevel string // Log verbosity level
	outDir   string // Directory receiving CSV outputs
	quiet    bool   // Skip printing per-run metrics
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "nic-sched-sim",
	Short: "Discrete-event simulator for NIC request-to-core scheduling policies",
}

// runCmd executes every run of a sweep configuration
var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run the simulations described by a sweep configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := harness.LoadConfig(args[0])
		if err != nil {
			return err
		}
		var seedOverride *int64
		if cmd.Flags().Changed("seed") {
			seedOverride = &seed
		}
		runs, err := cfg.Runs(seedOverride)
		if err != nil {
			return err
		}
		logrus.Infof("%d run(s) to execute, writing to %s", len(runs), outDir)

		startTime := time.Now()
		r := &harness.Runner{OutDir: outDir}
		if !quiet {
			r.OnResult = func(res *harness.RunResult) {
				fmt.Fprintf(cmd.OutOrStdout(), "--- run %d (%s) ---\n", res.Spec.Index, res.Spec.Sim.Policy)
				res.Metrics.Print(cmd.OutOrStdout())
			}
		}
		if _, err := r.Run(runs); err != nil {
			return err
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
		return nil
	},
}

// policiesCmd lists the scheduling policies and distributions a config may name
var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List available scheduling policies and distributions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "policies:")
		for _, p := range sim.AvailablePolicies() {
			fmt.Fprintf(out, "  %s\n", p)
		}
		fmt.Fprintln(out, "distributions:")
		for _, d := range workload.SupportedDistributions() {
			fmt.Fprintf(out, "  %s\n", d)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", harness.DefaultSeed, "Seed for all random streams (overrides the config)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&outDir, "out", "results", "Directory for CSV outputs")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "Do not print per-run metrics")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(policiesCmd)
}
