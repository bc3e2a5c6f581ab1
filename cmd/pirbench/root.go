package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pirbench/internal/config"
	"pirbench/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// appMetrics is shared by every pipeline run of the process.
var appMetrics = telemetry.NewMetrics()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pirbench",
	Short: "Benchmark driver for VeriSimplePIR",
	Long: `pirbench drives a VeriSimplePIR checkout through its parameter
calibration and benchmark programs and turns their console output into
persisted, comparable metrics.

Each configuration (N, d) is written to the parameter header, built,
calibrated against the modulus the benchmark reports, rebuilt, measured,
and parsed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pirbench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("project", "", "VeriSimplePIR checkout (overrides project_dir)")
	rootCmd.PersistentFlags().String("store", "", "Result store: sqlite, postgres, json or none")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("project_dir", rootCmd.PersistentFlags().Lookup("project"))
	viper.BindPFlag("store.type", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Load(cfgFile)

	// Validate configuration values
	if err := config.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}

	settings := config.Current()
	telemetry.InitLogger(settings.Verbose, settings.LogFile)

	// Start Metrics Server
	if settings.MetricsPort > 0 {
		go func() {
			if err := telemetry.StartMetricsServer(settings.MetricsPort, appMetrics); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to start metrics server: %v\n", err)
			}
		}()
	}
}
