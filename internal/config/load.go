// Package config loads pirbench settings from flags, environment, .env and
// an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PIRBENCH_PROJECT_DIR.
const EnvPrefix = "PIRBENCH"

// Load initializes the configuration from file and environment variables.
// A missing config file is not an error and no file is written.
func Load(cfgFile string) {
	// explicit .env loading; a missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("pirbench")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	SetDefaults()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", cfgFile, err)
	}
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("project_dir", "~/pir/VeriSimplePIR")
	viper.SetDefault("params_file", "src/demo/global_parameters.h")
	viper.SetDefault("build_command", "make")
	viper.SetDefault("bench_binary", "bin/demo/bench/preproc_pir_bench")
	viper.SetDefault("params_binary", "bin/demo/scripts/params")
	viper.SetDefault("lib_dir", "bin/lib")
	viper.SetDefault("logs_dir", "metrics/logs")
	viper.SetDefault("command_timeout", 0)
	viper.SetDefault("store.type", "sqlite")
	viper.SetDefault("store.dsn", "") // per-type default chosen by db.NewStore
	viper.SetDefault("metrics_port", 0)
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")

	// Notification Defaults
	slackEnabled := false
	if os.Getenv("SLACK_BOT_USER_TOKEN") != "" {
		slackEnabled = true
	}
	viper.SetDefault("notifications.slack.enabled", slackEnabled)
	viper.SetDefault("notifications.slack.channel", "#benchmarks")
	viper.SetDefault("notifications.slack.events.on_start", true)
	viper.SetDefault("notifications.slack.events.on_success", true)
	viper.SetDefault("notifications.slack.events.on_failure", true)
}

// Settings is a typed snapshot of the loaded configuration.
type Settings struct {
	ProjectDir     string
	ParamsFile     string
	BuildCommand   string
	BenchBinary    string
	ParamsBinary   string
	LibDir         string
	LogsDir        string
	CommandTimeout time.Duration
	StoreType      string
	StoreDSN       string
	MetricsPort    int
	Verbose        bool
	LogFile        string
}

// Current reads the settings from viper.
func Current() Settings {
	return Settings{
		ProjectDir:     ExpandHome(viper.GetString("project_dir")),
		ParamsFile:     viper.GetString("params_file"),
		BuildCommand:   viper.GetString("build_command"),
		BenchBinary:    viper.GetString("bench_binary"),
		ParamsBinary:   viper.GetString("params_binary"),
		LibDir:         viper.GetString("lib_dir"),
		LogsDir:        viper.GetString("logs_dir"),
		CommandTimeout: durationSetting("command_timeout"),
		StoreType:      viper.GetString("store.type"),
		StoreDSN:       viper.GetString("store.dsn"),
		MetricsPort:    viper.GetInt("metrics_port"),
		Verbose:        viper.GetBool("verbose"),
		LogFile:        viper.GetString("log_file"),
	}
}

// durationSetting accepts a duration string ("30m") or a number of seconds.
func durationSetting(key string) time.Duration {
	switch v := viper.Get(key).(type) {
	case int, int32, int64, float64:
		return time.Duration(viper.GetFloat64(key) * float64(time.Second))
	case string:
		if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return viper.GetDuration(key)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
