package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ayham/sitekit/internal/config"
	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/usecase"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newDeployCmd creates the deploy command.
func newDeployCmd(c *container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish the built site to the configured provider",
		Long: `Publish the built output directory to the configured hosting
provider. The build directory is left untouched on failure so the
deploy can be retried.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.cfg.ValidateForDeploy(); err != nil {
				return err
			}
			artifact, err := loadArtifact(cmd.Context(), c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch c.cfg.Provider {
			case config.ProviderPages:
				pagesUC, err := c.pagesUseCase()
				if err != nil {
					return err
				}
				sha, err := pagesUC.Execute(cmd.Context(), c.cfg.PagesBranch, artifact)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Published version %s to branch %s (%s)\n",
					artifact.Version, c.cfg.PagesBranch, sha)
			default:
				deployUC := c.deployUseCase(c.hostingService())
				deploy, err := deployUC.Execute(cmd.Context(), c.cfg.SiteID, artifact)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deploy %s is live at %s\n", deploy.ID, deploy.URL)
			}
			return nil
		},
	}
	return cmd
}

// loadArtifact re-renders into the output directory of a previous build.
// Builds are deterministic, so for an unchanged version this reproduces the
// existing files byte for byte and yields their digests.
func loadArtifact(ctx context.Context, c *container) (*domain.Artifact, error) {
	indexPath := filepath.Join(c.cfg.OutputDir, usecase.IndexFile)
	exists, err := afero.Exists(c.fsRepo, indexPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("no built site at %s, run 'sitekit build' first", c.cfg.OutputDir)
	}
	return c.buildUC.Execute(ctx, usecase.BuildConfig{
		OutputDir: c.cfg.OutputDir,
		Version:   domain.NewVersion(c.cfg.Version),
		LinkURL:   c.cfg.LinkURL,
	})
}
