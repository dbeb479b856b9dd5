package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDisplayVersion(t *testing.T) {
	t.Run("Should accept plain and dotted versions", func(t *testing.T) {
		for _, v := range []string{"1", "2.3", "2.3.0", "v1.4.0", "2.3.0-rc.1", "1.0.0+build.5"} {
			assert.NoError(t, ValidateDisplayVersion(v), v)
		}
	})

	t.Run("Should reject empty and malformed versions", func(t *testing.T) {
		for _, v := range []string{"", "abc", "1.2.3.4", "1..2", "-1"} {
			assert.Error(t, ValidateDisplayVersion(v), v)
		}
	})
}

func TestValidateEnvironmentVariables(t *testing.T) {
	t.Run("Should pass when every required variable is set", func(t *testing.T) {
		t.Setenv("SITEKIT_TEST_REQUIRED", "yes")
		assert.NoError(t, ValidateEnvironmentVariables([]string{"SITEKIT_TEST_REQUIRED"}))
	})

	t.Run("Should name every missing variable", func(t *testing.T) {
		err := ValidateEnvironmentVariables([]string{"SITEKIT_TEST_MISSING_A", "SITEKIT_TEST_MISSING_B"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SITEKIT_TEST_MISSING_A")
		assert.Contains(t, err.Error(), "SITEKIT_TEST_MISSING_B")
	})

	t.Run("Should pass for an empty requirement list", func(t *testing.T) {
		assert.NoError(t, ValidateEnvironmentVariables(nil))
	})
}
