package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersion(t *testing.T) {
	t.Run("Should fall back to default when input is empty", func(t *testing.T) {
		v := NewVersion("")
		assert.Equal(t, "1", v.Display())
	})
	t.Run("Should fall back to default when input is blank", func(t *testing.T) {
		v := NewVersion("   ")
		assert.Equal(t, "1", v.Display())
	})
	t.Run("Should keep the supplied display value verbatim", func(t *testing.T) {
		v := NewVersion("2.3.0")
		assert.Equal(t, "2.3.0", v.Display())
	})
	t.Run("Should trim surrounding whitespace", func(t *testing.T) {
		v := NewVersion(" 2.3.0 ")
		assert.Equal(t, "2.3.0", v.Display())
	})
}

func TestVersionCanonical(t *testing.T) {
	t.Run("Should canonicalize a partial version", func(t *testing.T) {
		v := NewVersion("1")
		require.True(t, v.IsSemver())
		assert.Equal(t, "v1.0.0", v.Canonical())
	})
	t.Run("Should canonicalize a full version", func(t *testing.T) {
		v := NewVersion("2.3.0")
		require.True(t, v.IsSemver())
		assert.Equal(t, "v2.3.0", v.Canonical())
	})
	t.Run("Should pass through non-semver values", func(t *testing.T) {
		v := NewVersion("nightly-build")
		assert.False(t, v.IsSemver())
		assert.Equal(t, "nightly-build", v.Canonical())
	})
}
