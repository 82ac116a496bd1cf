package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/engine"
	"github.com/san-kum/robosim/internal/kernel"
	"github.com/san-kum/robosim/internal/models"
	"github.com/san-kum/robosim/internal/telemetry"
	"github.com/san-kum/robosim/internal/telemetry/record"
	"github.com/san-kum/robosim/internal/tui"
)

var (
	modelName  string
	configFile string
	presetSet  string
	presetName string
	duration   float64
	outFile    string
	logFormat  string
	plotColumn string
)

func main() {
	root := &cobra.Command{
		Use:   "robosim",
		Short: "deterministic multi-robot rigid-body simulator",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation to completion and write a telemetry log",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&modelName, "model", "pendulum", "pendulum|chain|cube")
	runCmd.Flags().StringVar(&configFile, "config", "", "YAML options file (overrides --preset)")
	runCmd.Flags().StringVar(&presetSet, "preset-set", "", "preset family, e.g. pendulum")
	runCmd.Flags().StringVar(&presetName, "preset", "default", "preset variant within --preset-set")
	runCmd.Flags().Float64Var(&duration, "time", 10.0, "simulated duration in seconds")
	runCmd.Flags().StringVar(&outFile, "out", "", "telemetry log output path (required)")
	runCmd.Flags().StringVar(&logFormat, "format", "binary", "binary|hierarchical")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "run a simulation with a live terminal monitor",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().StringVar(&modelName, "model", "pendulum", "pendulum|chain|cube")
	monitorCmd.Flags().StringVar(&configFile, "config", "", "YAML options file (overrides --preset)")
	monitorCmd.Flags().StringVar(&presetSet, "preset-set", "", "preset family, e.g. pendulum")
	monitorCmd.Flags().StringVar(&presetName, "preset", "default", "preset variant within --preset-set")
	monitorCmd.Flags().Float64Var(&duration, "time", 10.0, "simulated duration in seconds")

	validateCmd := &cobra.Command{
		Use:   "validate-config [path]",
		Short: "validate a YAML options file without running anything",
		Args:  cobra.ExactArgs(1),
		RunE:  validateConfig,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the built-in preset families and variants",
		RunE:  listPresets,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [log]",
		Short: "print or plot a recorded telemetry log",
		Args:  cobra.ExactArgs(1),
		RunE:  replayLog,
	}
	replayCmd.Flags().StringVar(&logFormat, "format", "binary", "binary|hierarchical")
	replayCmd.Flags().StringVar(&plotColumn, "plot", "", "float field name to render as an ASCII chart")

	root.AddCommand(runCmd, monitorCmd, validateCmd, presetsCmd, replayCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "robosim:", err)
		os.Exit(1)
	}
}

func loadOptions() (config.EngineOptions, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if presetSet != "" {
		family, ok := config.Presets[presetSet]
		if !ok {
			return config.EngineOptions{}, fmt.Errorf("unknown preset-set %q", presetSet)
		}
		opts, ok := family[presetName]
		if !ok {
			return config.EngineOptions{}, fmt.Errorf("unknown preset %q in %q", presetName, presetSet)
		}
		return opts, nil
	}
	return config.DefaultOptions(), nil
}

func buildModel(name string) (*kernel.Model, error) {
	switch name {
	case "pendulum":
		return models.NewSinglePendulum(1.0, 1.0, 9.81), nil
	case "chain":
		return models.NewTwoLinkChain(1.0, 1.0, 0.5, 0.8, 9.81), nil
	case "cube":
		return models.NewFreeCube(1.0, 0.1, 9.81), nil
	default:
		return nil, fmt.Errorf("unknown model %q (want pendulum|chain|cube)", name)
	}
}

func newEngineWithModel(name string) (*engine.Engine, *kernel.Model, error) {
	opts, err := loadOptions()
	if err != nil {
		return nil, nil, err
	}
	robot, err := buildModel(name)
	if err != nil {
		return nil, nil, err
	}
	e, err := engine.New(opts, nil)
	if err != nil {
		return nil, nil, err
	}
	return e, robot, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	if outFile == "" {
		return fmt.Errorf("--out is required")
	}
	e, robot, err := newEngineWithModel(modelName)
	if err != nil {
		return err
	}
	if err := e.AddSystem(modelName, robot, nil, nil, nil); err != nil {
		return err
	}
	rec := record.New(time.Now().Unix(), config.StepperMinTimestep)
	if err := e.SetTelemetry(rec); err != nil {
		return err
	}
	if err := e.Start([][]float64{robot.NeutralConfiguration()}, [][]float64{make([]float64, robot.NV)}, nil); err != nil {
		return err
	}
	if err := e.Simulate(duration); err != nil {
		return err
	}
	if err := e.Stop(); err != nil {
		return err
	}

	log := rec.Flush()
	switch logFormat {
	case "binary":
		return record.WriteBinary(outFile, log)
	case "hierarchical":
		return record.WriteHierarchical(outFile, log)
	default:
		return fmt.Errorf("unknown --format %q", logFormat)
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	e, robot, err := newEngineWithModel(modelName)
	if err != nil {
		return err
	}

	samples := make(chan tui.Sample, 64)
	sampler := tui.NewSampler(modelName, samples)
	if err := e.AddSystem(modelName, robot, nil, nil, sampler); err != nil {
		return err
	}
	if err := e.SetTelemetry(telemetry.NopSurface{}); err != nil {
		return err
	}
	if err := e.Start([][]float64{robot.NeutralConfiguration()}, [][]float64{make([]float64, robot.NV)}, nil); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		err := e.Simulate(duration)
		_ = e.Stop()
		done <- err
	}()

	return tui.Run([]string{modelName}, samples, done, duration)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	opts, err := config.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("OK: %s (stepper.odeSolver=%s, constraints.solver=%s, contacts.model=%s)\n",
		args[0], opts.Stepper.OdeSolver, opts.Constraints.Solver, opts.Contacts.Model)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SET\tVARIANT")
	for set, variants := range config.Presets {
		for variant := range variants {
			fmt.Fprintf(w, "%s\t%s\n", set, variant)
		}
	}
	return w.Flush()
}

func replayLog(cmd *cobra.Command, args []string) error {
	var log telemetry.LogData
	var err error
	switch logFormat {
	case "binary":
		log, err = record.ReadBinary(args[0])
	case "hierarchical":
		log, err = record.ReadHierarchical(args[0])
	default:
		return fmt.Errorf("unknown --format %q", logFormat)
	}
	if err != nil {
		return err
	}

	if plotColumn != "" {
		for i, name := range log.FloatFieldNames {
			if name == plotColumn {
				fmt.Println(asciigraph.Plot(log.FloatData[i], asciigraph.Height(15), asciigraph.Caption(plotColumn)))
				return nil
			}
		}
		return fmt.Errorf("unknown float field %q", plotColumn)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	names := log.FieldNames()
	for _, n := range names {
		fmt.Fprintf(w, "%s\t", n)
	}
	fmt.Fprintln(w)
	for row := range log.Timestamps {
		fmt.Fprintf(w, "%d\t", log.Timestamps[row])
		for _, col := range log.IntData {
			fmt.Fprintf(w, "%d\t", col[row])
		}
		for _, col := range log.FloatData {
			fmt.Fprintf(w, "%g\t", col[row])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
