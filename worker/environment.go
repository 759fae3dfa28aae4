package worker

import (
	"fmt"
	"os"
	"strings"
)

// applyEnvironment sets every variable from vars in the process environment.
// All names are validated before any variable is written, so a malformed
// request leaves the environment untouched. Variables absent from vars keep
// their current values.
func applyEnvironment(vars map[string]string) error {
	for name := range vars {
		if name == "" {
			return fmt.Errorf("environment variable with empty name")
		}
		if strings.ContainsAny(name, "=\x00") {
			return fmt.Errorf("invalid environment variable name %q", name)
		}
	}
	for name, value := range vars {
		if err := os.Setenv(name, value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}
