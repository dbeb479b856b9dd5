package orchestrator

import (
	"context"
	"fmt"

	"github.com/ayham/sitekit/internal/config"
	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/pipeline"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/ayham/sitekit/internal/service"
	"github.com/ayham/sitekit/internal/usecase"
	"go.uber.org/zap"
)

// Use case surfaces the orchestrator drives; narrowed to interfaces so the
// pipeline can be exercised with fakes.
type (
	SiteBuilder interface {
		Execute(ctx context.Context, cfg usecase.BuildConfig) (*domain.Artifact, error)
	}
	MarkupVerifier interface {
		Execute(ctx context.Context, cfg usecase.VerifyConfig) (*domain.CheckSuite, error)
	}
	ReportPublisher interface {
		Execute(ctx context.Context, suite *domain.CheckSuite, path string) (string, error)
	}
	SiteDeployer interface {
		Execute(ctx context.Context, siteID string, artifact *domain.Artifact) (*service.Deploy, error)
	}
	PagesPublisher interface {
		Execute(ctx context.Context, branch string, artifact *domain.Artifact) (string, error)
	}
)

// PipelineConfig controls a single pipeline invocation.
type PipelineConfig struct {
	CIOutput       bool
	SkipDeploy     bool
	EnableRollback bool
	Rollback       bool   // roll back a previous session instead of running
	SessionID      string // session to roll back; latest when empty
	ReportPath     string
}

// PipelineOrchestrator runs the build, verify and deploy stages with the
// halt semantics of a CI pipeline: a failed stage stops everything after it,
// except the test report, which is published even when verification fails.
type PipelineOrchestrator struct {
	cfg        *config.Config
	manifest   *pipeline.Manifest
	buildUC    SiteBuilder
	verifyUC   MarkupVerifier
	reportUC   ReportPublisher
	deployUC   SiteDeployer
	pagesUC    PagesPublisher
	hostingSvc service.HostingService
	stateRepo  repository.StateRepository
	log        *zap.Logger
}

// NewPipelineOrchestrator wires the pipeline.
func NewPipelineOrchestrator(
	cfg *config.Config,
	manifest *pipeline.Manifest,
	buildUC SiteBuilder,
	verifyUC MarkupVerifier,
	reportUC ReportPublisher,
	deployUC SiteDeployer,
	pagesUC PagesPublisher,
	hostingSvc service.HostingService,
	stateRepo repository.StateRepository,
	log *zap.Logger,
) *PipelineOrchestrator {
	return &PipelineOrchestrator{
		cfg:        cfg,
		manifest:   manifest,
		buildUC:    buildUC,
		verifyUC:   verifyUC,
		reportUC:   reportUC,
		deployUC:   deployUC,
		pagesUC:    pagesUC,
		hostingSvc: hostingSvc,
		stateRepo:  stateRepo,
		log:        log,
	}
}

// Execute runs the pipeline (or a rollback of a previous session).
func (o *PipelineOrchestrator) Execute(ctx context.Context, pcfg PipelineConfig) error {
	if pcfg.Rollback {
		return o.performRollback(ctx, pcfg.SessionID)
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultPipelineTimeout)
	defer cancel()
	if err := ValidateEnvironmentVariables(o.manifest.Env); err != nil {
		return fmt.Errorf("environment validation failed: %w", err)
	}
	if pcfg.EnableRollback {
		return o.executeWithSaga(ctx, pcfg)
	}
	return o.executeDirect(ctx, pcfg)
}

// executeDirect runs the stages without checkpointing.
func (o *PipelineOrchestrator) executeDirect(ctx context.Context, pcfg PipelineConfig) error {
	artifact, err := o.runBuild(ctx, pcfg)
	if err != nil {
		return err
	}
	if o.verifySkipped() {
		o.printStatus(pcfg.CIOutput, "Verification skipped")
	} else if err := o.runVerify(ctx, pcfg); err != nil {
		return err
	}
	if o.deploySkipped(pcfg) {
		o.printStatus(pcfg.CIOutput, "Deploy skipped")
		return nil
	}
	_, err = o.runDeploy(ctx, pcfg, artifact)
	return err
}

// executeWithSaga runs the stages through the checkpointing executor so a
// completed deploy can be rolled back later.
func (o *PipelineOrchestrator) executeWithSaga(ctx context.Context, pcfg PipelineConfig) error {
	saga := NewSagaExecutor(o.stateRepo, true, o.log)
	saga.SetVersion(o.cfg.Version)
	saga.SetProvider(o.cfg.Provider)
	var artifact *domain.Artifact
	buildStage, _ := o.manifest.StageNamed(pipeline.StageBuild)
	saga.AddStep(SagaStep{
		Name:    "build site",
		Type:    domain.StageTypeBuildSite,
		Retries: buildStage.Retries,
		Timeout: buildStage.Timeout,
		Execute: func(ctx context.Context) (map[string]any, error) {
			built, err := o.runBuild(ctx, pcfg)
			if err != nil {
				return nil, err
			}
			artifact = built
			return map[string]any{"output_dir": built.Root}, nil
		},
	})
	if !o.verifySkipped() {
		verifyStage, _ := o.manifest.StageNamed(pipeline.StageVerify)
		saga.AddStep(SagaStep{
			Name:    "verify markup",
			Type:    domain.StageTypeVerifyMarkup,
			Retries: verifyStage.Retries,
			Timeout: verifyStage.Timeout,
			Execute: func(ctx context.Context) (map[string]any, error) {
				return nil, o.runVerify(ctx, pcfg)
			},
		})
	}
	if !o.deploySkipped(pcfg) {
		deployStage, _ := o.manifest.StageNamed(pipeline.StageDeploy)
		saga.AddStep(SagaStep{
			Name:    "deploy site",
			Type:    domain.StageTypeCreateDeploy,
			Retries: deployStage.Retries,
			Timeout: deployStage.Timeout,
			Execute: func(ctx context.Context) (map[string]any, error) {
				deployID, err := o.runDeploy(ctx, pcfg, artifact)
				if err != nil {
					return nil, err
				}
				saga.SetDeployID(deployID)
				return map[string]any{"deploy_id": deployID}, nil
			},
			Compensate: o.compensateDeploy,
		})
	}
	o.printCIOutput(pcfg.CIOutput, "session_id=%s\n", saga.SessionID())
	return saga.Execute(ctx)
}

// performRollback compensates a previously persisted session.
func (o *PipelineOrchestrator) performRollback(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, RollbackTimeout)
	defer cancel()
	if sessionID == "" {
		latest, err := o.stateRepo.LoadLatest(ctx)
		if err != nil {
			return fmt.Errorf("failed to find a session to roll back: %w", err)
		}
		sessionID = latest.SessionID
	}
	saga, err := LoadExistingSaga(ctx, o.stateRepo, sessionID, o.log)
	if err != nil {
		return err
	}
	// Only the deploy leaves provider-side state behind; build and verify
	// outputs live in the working tree and are left for inspection.
	saga.steps = append(saga.steps, SagaStep{
		Name:       "deploy site",
		Type:       domain.StageTypeCreateDeploy,
		Compensate: o.compensateDeploy,
	})
	return saga.Rollback(ctx)
}

func (o *PipelineOrchestrator) compensateDeploy(ctx context.Context, rollbackData map[string]any) error {
	deployID, _ := rollbackData["deploy_id"].(string)
	if deployID == "" || o.hostingSvc == nil {
		return nil
	}
	return o.hostingSvc.CancelDeploy(ctx, deployID)
}

func (o *PipelineOrchestrator) runBuild(ctx context.Context, pcfg PipelineConfig) (*domain.Artifact, error) {
	o.printStatus(pcfg.CIOutput, "Building site")
	version := domain.NewVersion(o.cfg.Version)
	artifact, err := o.buildUC.Execute(ctx, usecase.BuildConfig{
		OutputDir: o.cfg.OutputDir,
		Version:   version,
		LinkURL:   o.cfg.LinkURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	o.printCIOutput(pcfg.CIOutput, "version=%s\n", version.Display())
	o.printCIOutput(pcfg.CIOutput, "artifact_files=%d\n", artifact.Len())
	o.log.Info("site built",
		zap.String("output_dir", artifact.Root),
		zap.Int("files", artifact.Len()),
		zap.Int64("bytes", artifact.TotalSize()))
	return artifact, nil
}

// runVerify executes the markup checks and always publishes the report,
// pass or fail, before surfacing any verification error.
func (o *PipelineOrchestrator) runVerify(ctx context.Context, pcfg PipelineConfig) error {
	o.printStatus(pcfg.CIOutput, "Verifying markup")
	suite, err := o.verifyUC.Execute(ctx, usecase.VerifyConfig{
		OutputDir: o.cfg.OutputDir,
		Version:   domain.NewVersion(o.cfg.Version),
		LinkURL:   o.cfg.LinkURL,
	})
	if err != nil {
		return fmt.Errorf("verification could not run: %w", err)
	}
	reportPath, reportErr := o.reportUC.Execute(ctx, suite, pcfg.ReportPath)
	if reportErr != nil {
		o.log.Warn("failed to publish test report", zap.Error(reportErr))
	} else {
		o.printCIOutput(pcfg.CIOutput, "report=%s\n", reportPath)
	}
	if !suite.Passed() {
		return fmt.Errorf("verification failed: %d of %d checks failed", suite.Failures(), len(suite.Results))
	}
	o.log.Info("markup verified", zap.Int("checks", len(suite.Results)))
	return nil
}

// runDeploy publishes the artifact via the configured provider and returns
// the provider-side identifier (deploy id or commit SHA).
func (o *PipelineOrchestrator) runDeploy(ctx context.Context, pcfg PipelineConfig, artifact *domain.Artifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("no artifact to deploy")
	}
	if err := o.cfg.ValidateForDeploy(); err != nil {
		return "", fmt.Errorf("deploy configuration invalid: %w", err)
	}
	o.printStatus(pcfg.CIOutput, "Deploying site")
	switch o.cfg.Provider {
	case config.ProviderPages:
		sha, err := o.pagesUC.Execute(ctx, o.cfg.PagesBranch, artifact)
		if err != nil {
			return "", fmt.Errorf("deploy failed: %w", err)
		}
		o.printCIOutput(pcfg.CIOutput, "pages_commit=%s\n", sha)
		return sha, nil
	default:
		deploy, err := o.deployUC.Execute(ctx, o.cfg.SiteID, artifact)
		if err != nil {
			return "", fmt.Errorf("deploy failed: %w", err)
		}
		o.printCIOutput(pcfg.CIOutput, "deploy_id=%s\n", deploy.ID)
		o.printCIOutput(pcfg.CIOutput, "deploy_url=%s\n", deploy.URL)
		o.log.Info("site deployed", zap.String("deploy_id", deploy.ID), zap.String("url", deploy.URL))
		return deploy.ID, nil
	}
}

func (o *PipelineOrchestrator) verifySkipped() bool {
	stage, ok := o.manifest.StageNamed(pipeline.StageVerify)
	return ok && stage.Skip
}

func (o *PipelineOrchestrator) deploySkipped(pcfg PipelineConfig) bool {
	if pcfg.SkipDeploy {
		return true
	}
	if stage, ok := o.manifest.StageNamed(pipeline.StageDeploy); ok {
		return stage.Skip
	}
	// Manifest omits the deploy stage entirely.
	return true
}

func (o *PipelineOrchestrator) printCIOutput(ciOutput bool, format string, args ...any) {
	if ciOutput {
		fmt.Printf(format, args...)
	}
}

func (o *PipelineOrchestrator) printStatus(ciOutput bool, message string) {
	if ciOutput {
		fmt.Printf("## %s\n", message)
	} else {
		o.log.Info(message)
	}
}
