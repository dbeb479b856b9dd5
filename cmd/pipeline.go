package cmd

import (
	"github.com/ayham/sitekit/internal/orchestrator"
	"github.com/spf13/cobra"
)

// newPipelineCmd creates the pipeline command.
func newPipelineCmd(c *container) *cobra.Command {
	var (
		pipelineCIOutput       bool
		pipelineSkipDeploy     bool
		pipelineEnableRollback bool
		pipelineRollback       bool
		pipelineSessionID      string
		pipelineReportPath     string
	)
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the build, verify and deploy stages",
		Long: `Run the full pipeline: build the site, verify the markup, publish
the test report, and deploy.

A failed build stops the run before verification. A failed verification
still publishes the test report, then stops the run before the deploy.
A failed deploy leaves the built output in place for a retry.

With rollback support enabled (--enable-rollback), each stage is
checkpointed and a completed deploy can be canceled later with
--rollback.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, err := c.orchestrator()
			if err != nil {
				return err
			}
			return orch.Execute(cmd.Context(), orchestrator.PipelineConfig{
				CIOutput:       pipelineCIOutput,
				SkipDeploy:     pipelineSkipDeploy,
				EnableRollback: pipelineEnableRollback,
				Rollback:       pipelineRollback,
				SessionID:      pipelineSessionID,
				ReportPath:     pipelineReportPath,
			})
		},
	}
	cmd.Flags().BoolVar(&pipelineCIOutput, "ci-output", false, "Output in CI-friendly format")
	cmd.Flags().BoolVar(&pipelineSkipDeploy, "skip-deploy", false, "Stop after verification")
	cmd.Flags().BoolVar(&pipelineEnableRollback, "enable-rollback", false, "Checkpoint stages for later rollback")
	cmd.Flags().BoolVar(&pipelineRollback, "rollback", false, "Roll back a previous pipeline session")
	cmd.Flags().
		StringVar(&pipelineSessionID, "session-id", "", "Session ID to roll back (uses latest if not specified)")
	cmd.Flags().StringVar(&pipelineReportPath, "report", "", "Report path (defaults to test-results/junit.xml)")
	return cmd
}
