package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clinicsim/clinicsim/sim"
	"github.com/clinicsim/clinicsim/sim/trace"
	"github.com/clinicsim/clinicsim/sim/workload"
)

var (
	// CLI flags for the run command
	configPath  string  // YAML clinic config; empty uses built-in defaults
	envFile     string  // dotenv file loaded before the environment overlay
	seed        int64   // Master seed for activation order, lifecycle and intake
	ticks       int64   // Number of ticks to simulate
	logLevel    string  // Log verbosity level
	arrivalRate float64 // Patients per tick
	doctors     int     // Doctor slots
	beds        int     // Bed slots
	rooms       int     // Room slots
	resolution  string  // Fuzzy universe resolution
	outputScale int     // Satisfaction output scale (1 or 10)
	traceLevel  string  // Event trace level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "clinicsim",
	Short: "Tick-driven clinic resource-arbitration simulator",
}

// runCmd executes the simulation using the config file, environment and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the clinic simulation",
	Run: func(cmd *cobra.Command, args []string) {
		env, err := loadEnv(envFile)
		if err != nil {
			logrus.Fatalf("Failed to read environment: %v", err)
		}
		setupLogging(cmd, env)

		cfg, err := resolveConfig(cmd, env)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("Starting simulation with doctors=%s, beds=%s, rooms=%s, ticks=%d, seed=%d",
			slotString(cfg.Resources.Doctors), slotString(cfg.Resources.Beds), slotString(cfg.Resources.Rooms),
			cfg.Ticks, cfg.Seed)

		startTime := time.Now()

		clinic, err := sim.NewClinic(*cfg)
		if err != nil {
			logrus.Fatalf("Failed to build clinic: %v", err)
		}
		intake := workload.NewGenerator(cfg.Intake, clinic.RNG().ForSubsystem(sim.SubsystemIntake))
		intake.UnitScale = !cfg.Fuzzy.EngineOptions().DisableUnitRescale
		clinic.Run(cfg.Ticks, intake)

		if err := clinic.CheckInvariants(); err != nil {
			logrus.Errorf("Invariant violated at end of run: %v", err)
		}

		clinic.Metrics.Print(clinic.Tick)
		printSummary(trace.Summarize(clinic.Trace, clinic.Metrics.Scores))

		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// setupLogging applies --log, falling back to CLINICSIM_LOG_LEVEL when the
// flag was not given.
func setupLogging(cmd *cobra.Command, env envOverrides) {
	level := logLevel
	if !cmd.Flags().Changed("log") && env.LogLevel != "" {
		level = env.LogLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", level)
	}
	logrus.SetLevel(parsed)
}

// resolveConfig layers YAML, environment and explicitly set flags, in that
// order of increasing precedence, and validates the result.
func resolveConfig(cmd *cobra.Command, env envOverrides) (*sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
		logrus.Infof("Loaded clinic config from %s", configPath)
	}

	env.apply(&cfg)

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("arrival-rate") {
		cfg.Intake.Rate = arrivalRate
	}
	if flags.Changed("doctors") {
		cfg.Resources.Doctors = &doctors
	}
	if flags.Changed("beds") {
		cfg.Resources.Beds = &beds
	}
	if flags.Changed("rooms") {
		cfg.Resources.Rooms = &rooms
	}
	if flags.Changed("resolution") {
		cfg.Fuzzy.Resolution = resolution
	}
	if flags.Changed("output-scale") {
		cfg.Fuzzy.OutputScale = outputScale
	}
	if flags.Changed("trace") {
		cfg.Trace = traceLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func slotString(n *int) string {
	if n == nil {
		return "untracked"
	}
	return fmt.Sprint(*n)
}

// printSummary displays the trace summary after the metrics block.
func printSummary(s *trace.TraceSummary) {
	fmt.Println("=== Trace Summary ===")
	fmt.Printf("Total Events         : %d\n", s.TotalEvents)
	kinds := make([]string, 0, len(s.KindCounts))
	for k := range s.KindCounts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-18s : %d\n", k, s.KindCounts[trace.EventKind(k)])
	}
	drugs := make([]string, 0, len(s.ShortagesByDrug))
	for d := range s.ShortagesByDrug {
		drugs = append(drugs, d)
	}
	sort.Strings(drugs)
	for _, d := range drugs {
		fmt.Printf("Shortages %-10s : %d\n", d, s.ShortagesByDrug[d])
	}
	if s.Satisfaction.Count > 0 {
		fmt.Printf("Satisfaction         : mean %.3f, stddev %.3f, min %.3f, max %.3f (n=%d)\n",
			s.Satisfaction.Mean, s.Satisfaction.StdDev, s.Satisfaction.Min, s.Satisfaction.Max, s.Satisfaction.Count)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML clinic config")
	runCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file read before CLINICSIM_* variables (missing file is ignored)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for activation order, patient lifecycle and intake")
	runCmd.Flags().Int64Var(&ticks, "ticks", 100, "Number of ticks to simulate")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Capacity
	runCmd.Flags().IntVar(&doctors, "doctors", 3, "Doctor slots")
	runCmd.Flags().IntVar(&beds, "beds", 5, "Bed slots")
	runCmd.Flags().IntVar(&rooms, "rooms", 4, "Room slots")

	// Intake and satisfaction
	runCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", 0.5, "Patient arrivals per tick")
	runCmd.Flags().StringVar(&resolution, "resolution", "base", "Fuzzy universe resolution (base, fine)")
	runCmd.Flags().IntVar(&outputScale, "output-scale", 10, "Satisfaction output scale (1 or 10)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "events", "Event trace level (none, events)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inferCmd)
}
