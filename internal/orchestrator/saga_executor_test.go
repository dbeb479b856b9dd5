package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSagaExecutor_Execute(t *testing.T) {
	t.Run("Should run steps in registration order", func(t *testing.T) {
		repo := newMemoryStateRepository()
		saga := NewSagaExecutor(repo, true, zap.NewNop())
		var order []domain.StageType
		for _, st := range []domain.StageType{
			domain.StageTypeBuildSite,
			domain.StageTypeVerifyMarkup,
			domain.StageTypeCreateDeploy,
		} {
			stageType := st
			saga.AddStep(SagaStep{
				Name: string(stageType),
				Type: stageType,
				Execute: func(_ context.Context) (map[string]any, error) {
					order = append(order, stageType)
					return nil, nil
				},
			})
		}
		require.NoError(t, saga.Execute(context.Background()))
		assert.Equal(t, []domain.StageType{
			domain.StageTypeBuildSite,
			domain.StageTypeVerifyMarkup,
			domain.StageTypeCreateDeploy,
		}, order)
		assert.Equal(t, domain.PipelineStatusCompleted, saga.State().Status)
	})

	t.Run("Should compensate completed steps in reverse order on failure", func(t *testing.T) {
		repo := newMemoryStateRepository()
		saga := NewSagaExecutor(repo, true, zap.NewNop())
		var compensated []domain.StageType
		compensate := func(stageType domain.StageType) func(context.Context, map[string]any) error {
			return func(_ context.Context, _ map[string]any) error {
				compensated = append(compensated, stageType)
				return nil
			}
		}
		saga.AddStep(SagaStep{
			Name: "build",
			Type: domain.StageTypeBuildSite,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, nil
			},
			Compensate: compensate(domain.StageTypeBuildSite),
		})
		saga.AddStep(SagaStep{
			Name: "create deploy",
			Type: domain.StageTypeCreateDeploy,
			Execute: func(_ context.Context) (map[string]any, error) {
				return map[string]any{"deploy_id": "dep-9"}, nil
			},
			Compensate: compensate(domain.StageTypeCreateDeploy),
		})
		saga.AddStep(SagaStep{
			Name: "finalize",
			Type: domain.StageTypeFinalize,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, errors.New("provider rejected the deploy")
			},
		})
		err := saga.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stage 'finalize' failed")
		assert.Equal(t, []domain.StageType{
			domain.StageTypeCreateDeploy,
			domain.StageTypeBuildSite,
		}, compensated)
		assert.Equal(t, domain.PipelineStatusRolledBack, saga.State().Status)
	})

	t.Run("Should pass the step's rollback data to its compensation", func(t *testing.T) {
		repo := newMemoryStateRepository()
		saga := NewSagaExecutor(repo, true, zap.NewNop())
		var got map[string]any
		saga.AddStep(SagaStep{
			Name: "create deploy",
			Type: domain.StageTypeCreateDeploy,
			Execute: func(_ context.Context) (map[string]any, error) {
				return map[string]any{"deploy_id": "dep-42"}, nil
			},
			Compensate: func(_ context.Context, data map[string]any) error {
				got = data
				return nil
			},
		})
		saga.AddStep(SagaStep{
			Name: "finalize",
			Type: domain.StageTypeFinalize,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, errors.New("boom")
			},
		})
		require.Error(t, saga.Execute(context.Background()))
		assert.Equal(t, map[string]any{"deploy_id": "dep-42"}, got)
	})

	t.Run("Should retry a flaky step before failing it", func(t *testing.T) {
		repo := newMemoryStateRepository()
		saga := NewSagaExecutor(repo, true, zap.NewNop())
		attempts := 0
		saga.AddStep(SagaStep{
			Name: "upload",
			Type: domain.StageTypeUploadFiles,
			Execute: func(_ context.Context) (map[string]any, error) {
				attempts++
				if attempts == 1 {
					return nil, errors.New("transient")
				}
				return nil, nil
			},
		})
		require.NoError(t, saga.Execute(context.Background()))
		assert.Equal(t, 2, attempts)
	})

	t.Run("Should not roll back when rollback is disabled", func(t *testing.T) {
		repo := newMemoryStateRepository()
		saga := NewSagaExecutor(repo, false, zap.NewNop())
		compensated := false
		saga.AddStep(SagaStep{
			Name: "build",
			Type: domain.StageTypeBuildSite,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, nil
			},
			Compensate: func(_ context.Context, _ map[string]any) error {
				compensated = true
				return nil
			},
		})
		saga.AddStep(SagaStep{
			Name: "verify",
			Type: domain.StageTypeVerifyMarkup,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, errors.New("checks failed")
			},
		})
		require.Error(t, saga.Execute(context.Background()))
		assert.False(t, compensated)
	})

	t.Run("Should keep running when a checkpoint save fails mid-run", func(t *testing.T) {
		repo := newMemoryStateRepository()
		saga := NewSagaExecutor(repo, true, zap.NewNop())
		saga.AddStep(SagaStep{
			Name: "build",
			Type: domain.StageTypeBuildSite,
			Execute: func(_ context.Context) (map[string]any, error) {
				// Break persistence after the initial save succeeded.
				repo.saveErr = errors.New("disk full")
				return nil, nil
			},
		})
		require.NoError(t, saga.Execute(context.Background()))
		assert.Equal(t, domain.PipelineStatusCompleted, saga.State().Status)
	})
}

func TestLoadExistingSaga(t *testing.T) {
	t.Run("Should restore a persisted session for rollback", func(t *testing.T) {
		repo := newMemoryStateRepository()
		original := NewSagaExecutor(repo, true, zap.NewNop())
		original.AddStep(SagaStep{
			Name: "create deploy",
			Type: domain.StageTypeCreateDeploy,
			Execute: func(_ context.Context) (map[string]any, error) {
				return map[string]any{"deploy_id": "dep-7"}, nil
			},
		})
		require.NoError(t, original.Execute(context.Background()))

		loaded, err := LoadExistingSaga(context.Background(), repo, original.SessionID(), zap.NewNop())
		require.NoError(t, err)
		var canceled string
		loaded.steps = append(loaded.steps, SagaStep{
			Name: "create deploy",
			Type: domain.StageTypeCreateDeploy,
			Compensate: func(_ context.Context, data map[string]any) error {
				canceled, _ = data["deploy_id"].(string)
				return nil
			},
		})
		require.NoError(t, loaded.Rollback(context.Background()))
		assert.Equal(t, "dep-7", canceled)
		assert.Equal(t, domain.PipelineStatusRolledBack, loaded.State().Status)
	})

	t.Run("Should fail for an unknown session", func(t *testing.T) {
		repo := newMemoryStateRepository()
		_, err := LoadExistingSaga(context.Background(), repo, "missing", zap.NewNop())
		require.Error(t, err)
	})
}
