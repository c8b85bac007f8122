package main

import (
	"os"

	"github.com/Carmen-Shannon/oxy-swarm/engine/config"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string

	// overrides shared by run and bench; zero values keep the configured setting
	instanceCount int
	mode          string

	frames     int
	frameDelta float64
	plotHeight int
)

// main registers the run, bench and config commands and executes the root command.
// It exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "oxy-swarm",
		Short:         "batched instanced sprite swarm renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				return nil
			}
			return core.SetLevel(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (.toml, .yaml, .yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "open a window and render the swarm",
		RunE:  runSwarm,
	}
	runCmd.Flags().IntVar(&instanceCount, "count", 0, "instance count override")
	runCmd.Flags().StringVar(&mode, "mode", "", "submission mode override: direct or indirect")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "render the swarm headless for a fixed number of frames and report pass statistics",
		RunE:  benchSwarm,
	}
	benchCmd.Flags().IntVar(&instanceCount, "count", 0, "instance count override")
	benchCmd.Flags().StringVar(&mode, "mode", "", "submission mode override: direct or indirect")
	benchCmd.Flags().IntVar(&frames, "frames", 600, "number of frames to render")
	benchCmd.Flags().Float64Var(&frameDelta, "dt", 1.0/60.0, "simulation step per frame in seconds")
	benchCmd.Flags().IntVar(&plotHeight, "plot-height", 8, "height of the pass time graph")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg, ".toml")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	rootCmd.AddCommand(runCmd, benchCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		core.LogError("%v", err)
		os.Exit(1)
	}
}

// loadConfig returns the configured file, or the defaults when no --config is given, with the
// command line overrides applied and validated.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyOverrides(cfg)
	if logLevel == "" && cfg.Log.Level != "" {
		if err := core.SetLevel(cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func applyOverrides(cfg *config.Config) {
	if instanceCount > 0 {
		cfg.Swarm.InstanceCount = instanceCount
	}
	if mode != "" {
		cfg.Swarm.Mode = mode
	}
}
