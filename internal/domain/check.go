package domain

import "time"

// CheckResult is the outcome of a single markup contract check.
type CheckResult struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// CheckSuite groups the results of one verification pass over a built site.
type CheckSuite struct {
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	Results   []CheckResult `json:"results"`
}

// Failures returns the number of failed checks.
func (s *CheckSuite) Failures() int {
	count := 0
	for _, r := range s.Results {
		if !r.Passed {
			count++
		}
	}
	return count
}

// Passed reports whether every check in the suite succeeded.
func (s *CheckSuite) Passed() bool {
	return s.Failures() == 0
}

// Duration returns the summed duration of all checks.
func (s *CheckSuite) Duration() time.Duration {
	var total time.Duration
	for _, r := range s.Results {
		total += r.Duration
	}
	return total
}
