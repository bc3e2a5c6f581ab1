package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var storeTypes = []string{"sqlite", "sqlite3", "postgres", "postgresql", "json", "none"}

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	// Validate command timeout (zero disables it)
	if viper.IsSet("command_timeout") {
		if timeout := durationSetting("command_timeout"); timeout < 0 {
			errors = append(errors, fmt.Sprintf("command_timeout must not be negative, got: %v", timeout))
		}
	}

	// Validate metrics_port (zero disables the server)
	if viper.IsSet("metrics_port") {
		port := viper.GetInt("metrics_port")
		if port < 0 || port > 65535 {
			errors = append(errors, fmt.Sprintf("metrics_port must be between 0 and 65535, got: %d", port))
		}
	}

	// Validate store type
	storeType := strings.ToLower(viper.GetString("store.type"))
	known := storeType == ""
	for _, t := range storeTypes {
		if storeType == t {
			known = true
		}
	}
	if !known {
		errors = append(errors, fmt.Sprintf("store.type must be one of %s, got: %q",
			strings.Join(storeTypes, ", "), viper.GetString("store.type")))
	}
	if (storeType == "postgres" || storeType == "postgresql") && viper.GetString("store.dsn") == "" {
		errors = append(errors, "store.dsn is required for postgres")
	}

	// Validate paths that must not be empty
	for _, key := range []string{"project_dir", "params_file", "build_command", "bench_binary", "params_binary"} {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			errors = append(errors, fmt.Sprintf("%s must not be empty", key))
		}
	}

	// If there are any errors, return them
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}

	return nil
}
