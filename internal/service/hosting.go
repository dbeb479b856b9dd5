package service

import (
	"context"
	"time"

	"github.com/ayham/sitekit/internal/domain"
)

// Deploy states reported by the hosting provider.
const (
	DeployStateNew        = "new"
	DeployStateUploading  = "uploading"
	DeployStateProcessing = "processing"
	DeployStateReady      = "ready"
	DeployStateError      = "error"
)

// Deploy is a provider-side deploy in progress or completed.
type Deploy struct {
	ID string
	// State is one of the DeployState constants.
	State string
	// Required lists the SHA-1 digests the provider is missing and expects
	// to be uploaded.
	Required []string
	// URL is the public address once the deploy is live.
	URL string
}

// FileReader resolves an artifact file's content by site-relative path.
type FileReader func(path string) ([]byte, error)

// HostingService drives a static hosting provider's deploy API.
type HostingService interface {
	// CreateDeploy announces the artifact's file digests and opens a deploy.
	CreateDeploy(ctx context.Context, siteID string, artifact *domain.Artifact, title string) (*Deploy, error)
	// UploadFiles sends every file the provider reported as missing.
	UploadFiles(ctx context.Context, deploy *Deploy, artifact *domain.Artifact, read FileReader) error
	// WaitReady polls the deploy until it is live or errored.
	WaitReady(ctx context.Context, deployID string, timeout time.Duration) (*Deploy, error)
	// CancelDeploy abandons a deploy that will never finish; used as the
	// compensation when a later pipeline stage fails.
	CancelDeploy(ctx context.Context, deployID string) error
}
