package orchestrator

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// displayVersionRegex accepts the loose display versions the page renders:
// "1", "2.3.0", "2.3.0-rc.1" and the like. Unlike release tooling this is
// deliberately wider than strict semver.
var displayVersionRegex = regexp.MustCompile(`^v?\d+(\.\d+){0,2}(-[a-zA-Z0-9.]+)?(\+[a-zA-Z0-9.]+)?$`)

// ValidateDisplayVersion validates a display version string.
func ValidateDisplayVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if !displayVersionRegex.MatchString(version) {
		return fmt.Errorf("invalid version format: %s (expected: 1, 2.3 or 2.3.0)", version)
	}
	return nil
}

// ValidateEnvironmentVariables checks that the manifest's required
// environment variables are present before any stage runs.
func ValidateEnvironmentVariables(requiredVars []string) error {
	var missing []string
	for _, v := range requiredVars {
		if value := os.Getenv(v); value == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
