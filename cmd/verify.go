package cmd

import (
	"fmt"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/usecase"
	"github.com/spf13/cobra"
)

// newVerifyCmd creates the verify command.
func newVerifyCmd(c *container) *cobra.Command {
	var verifyReportPath string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the built site against its rendering contract",
		Long: `Run the markup checks against the built site and write a JUnit XML
report. The report is written even when checks fail; the command exits
non-zero on any failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			suite, err := c.verifyUC.Execute(cmd.Context(), usecase.VerifyConfig{
				OutputDir: c.cfg.OutputDir,
				Version:   domain.NewVersion(c.cfg.Version),
				LinkURL:   c.cfg.LinkURL,
			})
			if err != nil {
				return fmt.Errorf("verification could not run: %w", err)
			}
			reportPath, err := c.reportUC.Execute(cmd.Context(), suite, verifyReportPath)
			if err != nil {
				return fmt.Errorf("failed to write test report: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, result := range suite.Results {
				mark := "ok"
				if !result.Passed {
					mark = "FAIL"
				}
				fmt.Fprintf(out, "%-4s %s\n", mark, result.Name)
			}
			fmt.Fprintf(out, "Report written to %s\n", reportPath)
			if !suite.Passed() {
				return fmt.Errorf("%d of %d checks failed", suite.Failures(), len(suite.Results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&verifyReportPath, "report", "", "Report path (defaults to test-results/junit.xml)")
	return cmd
}
