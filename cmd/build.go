package cmd

import (
	"fmt"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/usecase"
	"github.com/spf13/cobra"
)

// newBuildCmd creates the build command.
func newBuildCmd(c *container) *cobra.Command {
	var buildOutputDir string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the site into the output directory",
		Long: `Render the page with the configured application version and stage
the assets it references. The build is deterministic: the same version
always produces byte-identical output.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputDir := c.cfg.OutputDir
			if buildOutputDir != "" {
				outputDir = buildOutputDir
			}
			artifact, err := c.buildUC.Execute(cmd.Context(), usecase.BuildConfig{
				OutputDir: outputDir,
				Version:   domain.NewVersion(c.cfg.Version),
				LinkURL:   c.cfg.LinkURL,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Built %d files into %s (version %s)\n",
				artifact.Len(), artifact.Root, artifact.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&buildOutputDir, "output", "", "Output directory (defaults to the configured one)")
	return cmd
}
