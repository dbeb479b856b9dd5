package usecase

import (
	"context"
	"testing"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAndVerify(t *testing.T, version *domain.Version) (*domain.CheckSuite, repository.FileSystemRepository) {
	t.Helper()
	ctx := context.Background()
	fs := repository.FileSystemRepository(afero.NewMemMapFs())
	build := &BuildSiteUseCase{FsRepo: fs}
	_, err := build.Execute(ctx, BuildConfig{OutputDir: "build", Version: version})
	require.NoError(t, err)
	verify := &VerifyMarkupUseCase{FsRepo: fs}
	suite, err := verify.Execute(ctx, VerifyConfig{OutputDir: "build", Version: version})
	require.NoError(t, err)
	return suite, fs
}

func TestVerifyMarkupUseCase_Execute(t *testing.T) {
	t.Run("Should pass every check against a fresh build", func(t *testing.T) {
		suite, _ := buildAndVerify(t, nil)
		for _, r := range suite.Results {
			assert.True(t, r.Passed, "check %q failed: %s", r.Name, r.Message)
		}
		assert.True(t, suite.Passed())
	})
	t.Run("Should pass with an explicit version", func(t *testing.T) {
		suite, _ := buildAndVerify(t, domain.NewVersion("2.3.0"))
		assert.True(t, suite.Passed())
	})
	t.Run("Should fail the disk check when the built index is tampered with", func(t *testing.T) {
		ctx := context.Background()
		fs := repository.FileSystemRepository(afero.NewMemMapFs())
		build := &BuildSiteUseCase{FsRepo: fs}
		_, err := build.Execute(ctx, BuildConfig{OutputDir: "build"})
		require.NoError(t, err)
		require.NoError(t, afero.WriteFile(fs, "build/index.html", []byte("<html></html>"), 0644))
		verify := &VerifyMarkupUseCase{FsRepo: fs}
		suite, err := verify.Execute(ctx, VerifyConfig{OutputDir: "build"})
		require.NoError(t, err)
		assert.False(t, suite.Passed())
		var found bool
		for _, r := range suite.Results {
			if r.Name == "matches the built index.html on disk" {
				found = true
				assert.False(t, r.Passed)
			}
		}
		assert.True(t, found)
	})
	t.Run("Should fail the version check when the build used a different version", func(t *testing.T) {
		ctx := context.Background()
		fs := repository.FileSystemRepository(afero.NewMemMapFs())
		build := &BuildSiteUseCase{FsRepo: fs}
		_, err := build.Execute(ctx, BuildConfig{OutputDir: "build", Version: domain.NewVersion("1")})
		require.NoError(t, err)
		verify := &VerifyMarkupUseCase{FsRepo: fs}
		suite, err := verify.Execute(ctx, VerifyConfig{OutputDir: "build", Version: domain.NewVersion("9.9.9")})
		require.NoError(t, err)
		// The rendered tree follows the verify config, so only the on-disk
		// comparison can fail here.
		assert.False(t, suite.Passed())
	})
	t.Run("Should run every check even after a failure", func(t *testing.T) {
		ctx := context.Background()
		fs := repository.FileSystemRepository(afero.NewMemMapFs())
		verify := &VerifyMarkupUseCase{FsRepo: fs}
		// No build at all: disk checks fail, structural checks still run.
		suite, err := verify.Execute(ctx, VerifyConfig{OutputDir: "build"})
		require.NoError(t, err)
		assert.Greater(t, len(suite.Results), 10)
		assert.False(t, suite.Passed())
	})
}
