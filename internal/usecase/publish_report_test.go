package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/ayham/sitekit/internal/service"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReportUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	suite := &domain.CheckSuite{
		Name:      "markup-contract",
		StartedAt: time.Now(),
		Results: []domain.CheckResult{
			{Name: "passing check", Passed: true},
			{Name: "failing check", Passed: false, Message: "broken"},
		},
	}
	t.Run("Should write the report to the default path", func(t *testing.T) {
		fs := repository.FileSystemRepository(afero.NewMemMapFs())
		uc := &PublishReportUseCase{FsRepo: fs, ReportSvc: service.NewJUnitService()}
		path, err := uc.Execute(ctx, suite, "")
		require.NoError(t, err)
		assert.Equal(t, DefaultReportPath, path)
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<testsuite")
		assert.Contains(t, string(data), `failures="1"`)
	})
	t.Run("Should honor an explicit report path", func(t *testing.T) {
		fs := repository.FileSystemRepository(afero.NewMemMapFs())
		uc := &PublishReportUseCase{FsRepo: fs, ReportSvc: service.NewJUnitService()}
		path, err := uc.Execute(ctx, suite, "out/results.xml")
		require.NoError(t, err)
		assert.Equal(t, "out/results.xml", path)
		exists, err := afero.Exists(fs, "out/results.xml")
		require.NoError(t, err)
		assert.True(t, exists)
	})
	t.Run("Should publish a report for a failing suite", func(t *testing.T) {
		fs := repository.FileSystemRepository(afero.NewMemMapFs())
		uc := &PublishReportUseCase{FsRepo: fs, ReportSvc: service.NewJUnitService()}
		failing := &domain.CheckSuite{
			Name:    "markup-contract",
			Results: []domain.CheckResult{{Name: "only failure", Passed: false, Message: "nope"}},
		}
		_, err := uc.Execute(ctx, failing, "")
		require.NoError(t, err)
	})
}
