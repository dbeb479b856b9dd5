package cmd

import (
	"os"

	"github.com/ayham/sitekit/internal/config"
	"github.com/ayham/sitekit/internal/logger"
	"github.com/ayham/sitekit/internal/orchestrator"
	"github.com/ayham/sitekit/internal/pipeline"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/ayham/sitekit/internal/service"
	"github.com/ayham/sitekit/internal/usecase"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// stateDir holds pipeline run checkpoints, relative to the working tree.
const stateDir = ".sitekit-state"

// container holds all the dependencies for the application.
type container struct {
	cfg      *config.Config
	manifest *pipeline.Manifest
	log      *zap.Logger

	fsRepo    repository.FileSystemRepository
	stateRepo repository.StateRepository
	gitRepo   repository.GitRepository

	buildUC  *usecase.BuildSiteUseCase
	verifyUC *usecase.VerifyMarkupUseCase
	reportUC *usecase.PublishReportUseCase
}

// newContainer creates a new container with all the dependencies.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(os.Getenv("SITEKIT_DEBUG") != "")
	if err != nil {
		return nil, err
	}

	fsRepo := repository.FileSystemRepository(afero.NewOsFs())
	manifest, err := pipeline.Load(fsRepo, pipeline.DefaultManifestPath)
	if err != nil {
		return nil, err
	}
	// The manifest pins the provider for the whole pipeline.
	if manifest.Provider != "" {
		cfg.Provider = manifest.Provider
	}

	// Git metadata is optional; outside a repository deploy titles fall
	// back to the bare version.
	gitRepo, err := repository.NewGitRepository()
	if err != nil {
		gitRepo = nil
	}

	return &container{
		cfg:       cfg,
		manifest:  manifest,
		log:       log,
		fsRepo:    fsRepo,
		stateRepo: repository.NewJSONStateRepository(fsRepo, stateDir),
		gitRepo:   gitRepo,
		buildUC:   &usecase.BuildSiteUseCase{FsRepo: fsRepo},
		verifyUC:  &usecase.VerifyMarkupUseCase{FsRepo: fsRepo},
		reportUC: &usecase.PublishReportUseCase{
			FsRepo:    fsRepo,
			ReportSvc: service.NewJUnitService(),
		},
	}, nil
}

// hostingService builds the provider client; only valid after the config
// passed ValidateForDeploy.
func (c *container) hostingService() service.HostingService {
	return service.NewNetlifyService("", c.cfg.AuthToken, c.log)
}

func (c *container) deployUseCase(hostingSvc service.HostingService) *usecase.DeploySiteUseCase {
	return &usecase.DeploySiteUseCase{
		FsRepo:     c.fsRepo,
		HostingSvc: hostingSvc,
		GitRepo:    c.gitRepo,
	}
}

func (c *container) pagesUseCase() (*usecase.PublishPagesUseCase, error) {
	pagesRepo, err := repository.NewPagesRepository(c.cfg.AuthToken, c.cfg.PagesOwner, c.cfg.PagesRepo)
	if err != nil {
		return nil, err
	}
	return &usecase.PublishPagesUseCase{FsRepo: c.fsRepo, PagesRepo: pagesRepo}, nil
}

// orchestrator wires the full pipeline. The pages publisher is only
// constructed when that provider is selected.
func (c *container) orchestrator() (*orchestrator.PipelineOrchestrator, error) {
	hostingSvc := c.hostingService()
	var pagesUC orchestrator.PagesPublisher
	if c.cfg.Provider == config.ProviderPages {
		uc, err := c.pagesUseCase()
		if err != nil {
			return nil, err
		}
		pagesUC = uc
	}
	return orchestrator.NewPipelineOrchestrator(
		c.cfg,
		c.manifest,
		c.buildUC,
		c.verifyUC,
		c.reportUC,
		c.deployUseCase(hostingSvc),
		pagesUC,
		hostingSvc,
		c.stateRepo,
		c.log,
	), nil
}

// InitCommands initializes all commands with their dependencies.
func InitCommands() error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	rootCmd.AddCommand(
		newBuildCmd(c),
		newVerifyCmd(c),
		newServeCmd(c),
		newDeployCmd(c),
		newPipelineCmd(c),
		newVersionCmd(),
	)
	return nil
}
