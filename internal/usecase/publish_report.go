package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/ayham/sitekit/internal/service"
	"github.com/spf13/afero"
)

// DefaultReportPath is where CI systems pick up the test report.
const DefaultReportPath = "test-results/junit.xml"

// PublishReportUseCase writes the verification report to disk. It runs even
// when verification failed, so a failing pipeline still publishes results.
type PublishReportUseCase struct {
	FsRepo    repository.FileSystemRepository
	ReportSvc service.ReportService
}

// Execute renders the suite and writes it to path (DefaultReportPath when
// empty). Returns the path written.
func (uc *PublishReportUseCase) Execute(ctx context.Context, suite *domain.CheckSuite, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path == "" {
		path = DefaultReportPath
	}
	data, err := uc.ReportSvc.Render(suite)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := uc.FsRepo.MkdirAll(dir, buildDirPerm); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := afero.WriteFile(uc.FsRepo, path, data, buildFilePerm); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
