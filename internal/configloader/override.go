// Package configloader holds the generic YAML-load and env-override
// helpers internal/config builds its LoadConfig/ApplyEnvOverrides on. The
// helpers are deliberately domain-agnostic (int/float/bool/string fields,
// by pointer and env-var name) so they carry over unchanged from one
// config schema to the next; only the field set in internal/config.Config
// and the ROUTER_*/CACHE_*/LOGGER_*/TRACE_* env names that drive it are
// specific to this router.
package configloader

import (
	"os"
	"strconv"
)

// OverrideString overrides a string field if the environment variable is set.
func OverrideString(field *string, env string) {
	if val := os.Getenv(env); val != "" {
		*field = val
	}
}

// OverrideInt overrides an int field if the environment variable is set.
func OverrideInt(field *int, env string) {
	if val := os.Getenv(env); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*field = i
		}
	}
}

// OverrideBool overrides a bool field if the environment variable is set.
func OverrideBool(field *bool, env string) {
	if val := os.Getenv(env); val != "" {
		switch val {
		case "1", "true", "TRUE", "True":
			*field = true
		case "0", "false", "FALSE", "False":
			*field = false
		}
	}
}

// OverrideFloat overrides a float64 field if the environment variable is set.
func OverrideFloat(field *float64, env string) {
	if val := os.Getenv(env); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*field = f
		}
	}
}
