package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/ayham/sitekit/internal/service"
	"github.com/spf13/afero"
)

// DefaultDeployTimeout bounds the wait for a deploy to go live.
const DefaultDeployTimeout = 5 * time.Minute

// DeploySiteUseCase publishes a built artifact to the hosting provider.
// On failure the local artifact is left untouched for a later retry.
type DeploySiteUseCase struct {
	FsRepo     repository.FileSystemRepository
	HostingSvc service.HostingService
	GitRepo    repository.GitRepository // optional; enriches deploy titles
}

// Execute creates the deploy, uploads whatever the provider is missing, and
// waits until it is live. Returns the finished deploy.
func (uc *DeploySiteUseCase) Execute(ctx context.Context, siteID string, artifact *domain.Artifact) (*service.Deploy, error) {
	title := uc.deployTitle(artifact)
	deploy, err := uc.HostingSvc.CreateDeploy(ctx, siteID, artifact, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create deploy: %w", err)
	}
	read := func(path string) ([]byte, error) {
		return afero.ReadFile(uc.FsRepo, filepath.Join(artifact.Root, path))
	}
	if err := uc.HostingSvc.UploadFiles(ctx, deploy, artifact, read); err != nil {
		return nil, fmt.Errorf("failed to upload files for deploy %s: %w", deploy.ID, err)
	}
	ready, err := uc.HostingSvc.WaitReady(ctx, deploy.ID, DefaultDeployTimeout)
	if err != nil {
		return nil, fmt.Errorf("deploy %s did not become ready: %w", deploy.ID, err)
	}
	return ready, nil
}

func (uc *DeploySiteUseCase) deployTitle(artifact *domain.Artifact) string {
	title := fmt.Sprintf("sitekit %s", artifact.Version)
	if uc.GitRepo == nil {
		return title
	}
	head, err := uc.GitRepo.Head()
	if err != nil {
		return title
	}
	return fmt.Sprintf("%s (%s@%.8s)", title, head.Branch, head.SHA)
}

// PublishPagesUseCase publishes a built artifact to a GitHub Pages branch.
type PublishPagesUseCase struct {
	FsRepo    repository.FileSystemRepository
	PagesRepo repository.PagesRepository
}

// Execute reads the artifact files and commits them to the pages branch.
// Returns the published commit SHA.
func (uc *PublishPagesUseCase) Execute(ctx context.Context, branch string, artifact *domain.Artifact) (string, error) {
	files := make(map[string][]byte, artifact.Len())
	for _, f := range artifact.Files {
		content, err := afero.ReadFile(uc.FsRepo, filepath.Join(artifact.Root, f.Path))
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
		files[f.Path] = content
	}
	message := fmt.Sprintf("Deploy version %s", artifact.Version)
	sha, err := uc.PagesRepo.Publish(ctx, branch, files, message)
	if err != nil {
		return "", fmt.Errorf("failed to publish pages branch: %w", err)
	}
	return sha, nil
}
