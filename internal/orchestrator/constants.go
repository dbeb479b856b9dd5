package orchestrator

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Timeouts and retry tuning. Env overrides take precedence; test binaries
// fall back to short values so suites stay fast.
var (
	// DefaultPipelineTimeout bounds a full build-verify-deploy run.
	DefaultPipelineTimeout = getTimeoutOrDefault("SITEKIT_PIPELINE_TIMEOUT", 30*time.Minute, 5*time.Second)
	// RollbackTimeout bounds compensation after a failed run.
	RollbackTimeout = getTimeoutOrDefault("SITEKIT_ROLLBACK_TIMEOUT", 5*time.Minute, 100*time.Millisecond)
	// DefaultRetryCount is the per-stage retry budget.
	DefaultRetryCount = uint64(getRetryCountOrDefault("SITEKIT_RETRY_COUNT", 3, 1))
	// DefaultRetryDelay seeds the exponential backoff between retries.
	DefaultRetryDelay = getTimeoutOrDefault("SITEKIT_RETRY_DELAY", 1*time.Second, 10*time.Millisecond)
)

func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

func getTimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}

func getRetryCountOrDefault(envVar string, prodDefault, testDefault int) int {
	if env := os.Getenv(envVar); env != "" {
		if count, err := strconv.Atoi(env); err == nil {
			return count
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
