package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// SagaStep is one checkpointed stage of a pipeline run. Execute returns the
// data Compensate needs to undo the stage; stages that leave nothing behind
// on the provider side may have a nil Compensate.
type SagaStep struct {
	Name       string
	Type       domain.StageType
	Retries    uint64
	Timeout    time.Duration
	Execute    func(ctx context.Context) (rollbackData map[string]any, err error)
	Compensate func(ctx context.Context, rollbackData map[string]any) error
}

// SagaExecutor runs pipeline stages in order, persisting a checkpoint after
// every transition, and compensates completed stages when a later one fails.
type SagaExecutor struct {
	sessionID      string
	stateRepo      repository.StateRepository
	state          *domain.PipelineState
	steps          []SagaStep
	enableRollback bool
	log            *zap.Logger
}

// NewSagaExecutor creates an executor for a fresh session.
func NewSagaExecutor(stateRepo repository.StateRepository, enableRollback bool, log *zap.Logger) *SagaExecutor {
	sessionID := uuid.New().String()
	return &SagaExecutor{
		sessionID:      sessionID,
		stateRepo:      stateRepo,
		state:          domain.NewPipelineState(sessionID),
		steps:          []SagaStep{},
		enableRollback: enableRollback,
		log:            log,
	}
}

// LoadExistingSaga restores the executor for a previously persisted session,
// used to roll back a failed run after the fact.
func LoadExistingSaga(
	ctx context.Context,
	stateRepo repository.StateRepository,
	sessionID string,
	log *zap.Logger,
) (*SagaExecutor, error) {
	state, err := stateRepo.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline state: %w", err)
	}
	return &SagaExecutor{
		sessionID:      sessionID,
		stateRepo:      stateRepo,
		state:          state,
		steps:          []SagaStep{},
		enableRollback: true,
		log:            log,
	}, nil
}

// AddStep registers a stage; registration order is execution order.
func (s *SagaExecutor) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
	s.state.AddStage(step.Type)
}

// Execute runs all stages, halting at the first failure. With rollback
// enabled, completed stages are compensated before the error is returned.
func (s *SagaExecutor) Execute(ctx context.Context) error {
	if s.enableRollback {
		if err := s.saveState(ctx); err != nil {
			return fmt.Errorf("failed to save initial state: %w", err)
		}
	}
	s.state.Status = domain.PipelineStatusRunning
	for _, step := range s.steps {
		if err := s.executeStep(ctx, step); err != nil {
			s.state.MarkStageFailed(step.Type, err)
			s.saveStateBestEffort(ctx, "before rollback")
			if s.enableRollback {
				rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RollbackTimeout)
				rollbackErr := s.rollback(rollbackCtx)
				cancel()
				if rollbackErr != nil {
					return fmt.Errorf("stage '%s' failed: %w, rollback also failed: %v",
						step.Name, err, rollbackErr)
				}
			}
			return fmt.Errorf("stage '%s' failed: %w", step.Name, err)
		}
	}
	s.state.Status = domain.PipelineStatusCompleted
	if s.enableRollback {
		s.saveStateBestEffort(ctx, "at completion")
	}
	return nil
}

func (s *SagaExecutor) executeStep(ctx context.Context, step SagaStep) error {
	s.state.MarkStageStarted(step.Type)
	if s.enableRollback {
		s.saveStateBestEffort(ctx, "after stage start")
	}
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}
	retries := step.Retries
	if retries == 0 {
		retries = DefaultRetryCount
	}
	var rollbackData map[string]any
	strategy := retry.WithMaxRetries(retries, retry.NewExponential(DefaultRetryDelay))
	err := retry.Do(ctx, strategy, func(retryCtx context.Context) error {
		if err := retryCtx.Err(); err != nil {
			return err
		}
		data, execErr := step.Execute(retryCtx)
		if execErr != nil {
			return retry.RetryableError(execErr)
		}
		rollbackData = data
		return nil
	})
	if err != nil {
		return err
	}
	s.state.MarkStageCompleted(step.Type, rollbackData)
	if s.enableRollback {
		s.saveStateBestEffort(ctx, "after stage completion")
	}
	return nil
}

// Rollback compensates completed stages of a loaded session.
func (s *SagaExecutor) Rollback(ctx context.Context) error {
	return s.rollback(ctx)
}

func (s *SagaExecutor) rollback(ctx context.Context) error {
	completed := s.state.CompletedStages()
	if len(completed) == 0 {
		s.log.Info("nothing to roll back", zap.String("session_id", s.sessionID))
		return nil
	}
	s.log.Info("rolling back pipeline", zap.String("session_id", s.sessionID), zap.Int("stages", len(completed)))
	for _, rec := range completed {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("rollback canceled: %w", err)
		}
		step := s.findStepByType(rec.Type)
		if step == nil || step.Compensate == nil {
			continue
		}
		s.log.Info("compensating stage", zap.String("stage", step.Name))
		if err := s.executeCompensation(ctx, step, rec.RollbackData); err != nil {
			return fmt.Errorf("rollback failed for %s: %w", step.Name, err)
		}
		if s.enableRollback {
			s.saveStateBestEffort(ctx, "during rollback")
		}
	}
	s.state.Status = domain.PipelineStatusRolledBack
	if s.enableRollback {
		s.saveStateBestEffort(ctx, "after rollback")
	}
	s.log.Info("rollback completed", zap.String("session_id", s.sessionID))
	return nil
}

func (s *SagaExecutor) executeCompensation(ctx context.Context, step *SagaStep, rollbackData map[string]any) error {
	strategy := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
	return retry.Do(ctx, strategy, func(retryCtx context.Context) error {
		if err := retryCtx.Err(); err != nil {
			return err
		}
		if err := step.Compensate(retryCtx, rollbackData); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (s *SagaExecutor) findStepByType(stageType domain.StageType) *SagaStep {
	for i := range s.steps {
		if s.steps[i].Type == stageType {
			return &s.steps[i]
		}
	}
	return nil
}

func (s *SagaExecutor) saveState(ctx context.Context) error {
	return s.stateRepo.Save(ctx, s.state)
}

// saveStateBestEffort logs persistence failures instead of aborting; a lost
// checkpoint must never break a running pipeline.
func (s *SagaExecutor) saveStateBestEffort(ctx context.Context, when string) {
	if err := s.saveState(ctx); err != nil {
		s.log.Warn("failed to save pipeline state", zap.String("when", when), zap.Error(err))
	}
}

// SessionID returns the session this executor checkpoints under.
func (s *SagaExecutor) SessionID() string {
	return s.sessionID
}

// State returns the current pipeline state.
func (s *SagaExecutor) State() *domain.PipelineState {
	return s.state
}

// SetVersion records the display version on the state.
func (s *SagaExecutor) SetVersion(version string) {
	s.state.Version = version
}

// SetProvider records the deploy provider on the state.
func (s *SagaExecutor) SetProvider(provider string) {
	s.state.Provider = provider
}

// SetDeployID records the provider-side deploy id on the state.
func (s *SagaExecutor) SetDeployID(id string) {
	s.state.DeployID = id
}
