package service

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/ayham/sitekit/internal/domain"
)

// junitService renders JUnit XML, the lingua franca of CI test reporting.
type junitService struct{}

// NewJUnitService creates a ReportService emitting JUnit XML.
func NewJUnitService() ReportService {
	return &junitService{}
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      string          `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	Cases     []junitTestCase `xml:"testcase"`
}

func (s *junitService) Render(suite *domain.CheckSuite) ([]byte, error) {
	out := junitTestSuite{
		Name:      suite.Name,
		Tests:     len(suite.Results),
		Failures:  suite.Failures(),
		Time:      formatSeconds(suite.Duration()),
		Timestamp: suite.StartedAt.UTC().Format(time.RFC3339),
	}
	for _, r := range suite.Results {
		tc := junitTestCase{
			Name:      r.Name,
			ClassName: suite.Name,
			Time:      formatSeconds(r.Duration),
		}
		if !r.Passed {
			tc.Failure = &junitFailure{Message: r.Message, Type: "AssertionError"}
		}
		out.Cases = append(out.Cases, tc)
	}
	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal junit report: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
