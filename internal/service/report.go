package service

import (
	"github.com/ayham/sitekit/internal/domain"
)

// ReportService serializes verification results into a machine-readable
// test report that CI systems can ingest.
type ReportService interface {
	Render(suite *domain.CheckSuite) ([]byte, error)
}
