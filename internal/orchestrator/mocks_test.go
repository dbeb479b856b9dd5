package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/service"
	"github.com/ayham/sitekit/internal/usecase"
)

// memoryStateRepository keeps pipeline states in memory for tests.
type memoryStateRepository struct {
	mu     sync.Mutex
	states map[string]*domain.PipelineState
	latest string
	// saveErr, when set, fails every Save call.
	saveErr error
	saves   int
}

func newMemoryStateRepository() *memoryStateRepository {
	return &memoryStateRepository{states: map[string]*domain.PipelineState{}}
}

func (m *memoryStateRepository) Save(_ context.Context, state *domain.PipelineState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.states[state.SessionID] = state
	m.latest = state.SessionID
	return nil
}

func (m *memoryStateRepository) Load(_ context.Context, sessionID string) (*domain.PipelineState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[sessionID]
	if !ok {
		return nil, errors.New("state not found")
	}
	return state, nil
}

func (m *memoryStateRepository) LoadLatest(_ context.Context) (*domain.PipelineState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == "" {
		return nil, errors.New("no sessions")
	}
	return m.states[m.latest], nil
}

func (m *memoryStateRepository) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}

func (m *memoryStateRepository) Exists(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.states[sessionID]
	return ok, nil
}

type fakeBuilder struct {
	calls    int
	artifact *domain.Artifact
	err      error
}

func (f *fakeBuilder) Execute(_ context.Context, cfg usecase.BuildConfig) (*domain.Artifact, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.artifact != nil {
		return f.artifact, nil
	}
	return &domain.Artifact{
		Root:      cfg.OutputDir,
		Version:   cfg.Version.Display(),
		CreatedAt: time.Now(),
		Files: []domain.ArtifactFile{
			{Path: "index.html", SHA1: "abc123", Size: 512},
		},
	}, nil
}

type fakeVerifier struct {
	calls int
	suite *domain.CheckSuite
	err   error
}

func (f *fakeVerifier) Execute(_ context.Context, _ usecase.VerifyConfig) (*domain.CheckSuite, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.suite != nil {
		return f.suite, nil
	}
	return passingSuite(), nil
}

func passingSuite() *domain.CheckSuite {
	return &domain.CheckSuite{
		Name:      "markup-contract",
		StartedAt: time.Now(),
		Results: []domain.CheckResult{
			{Name: "renders exactly one application container", Passed: true},
		},
	}
}

func failingSuite() *domain.CheckSuite {
	return &domain.CheckSuite{
		Name:      "markup-contract",
		StartedAt: time.Now(),
		Results: []domain.CheckResult{
			{Name: "renders exactly one application container", Passed: true},
			{Name: "link text reads ayham", Passed: false, Message: "want \"ayham\""},
		},
	}
}

type fakeReporter struct {
	calls  int
	suites []*domain.CheckSuite
	err    error
}

func (f *fakeReporter) Execute(_ context.Context, suite *domain.CheckSuite, path string) (string, error) {
	f.calls++
	f.suites = append(f.suites, suite)
	if f.err != nil {
		return "", f.err
	}
	if path == "" {
		path = usecase.DefaultReportPath
	}
	return path, nil
}

type fakeDeployer struct {
	calls  int
	deploy *service.Deploy
	err    error
}

func (f *fakeDeployer) Execute(_ context.Context, _ string, _ *domain.Artifact) (*service.Deploy, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.deploy != nil {
		return f.deploy, nil
	}
	return &service.Deploy{ID: "dep-1", State: service.DeployStateReady, URL: "https://example.netlify.app"}, nil
}

type fakePagesPublisher struct {
	calls int
	sha   string
	err   error
}

func (f *fakePagesPublisher) Execute(_ context.Context, _ string, _ *domain.Artifact) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.sha == "" {
		return "deadbeef", nil
	}
	return f.sha, nil
}

type fakeHosting struct {
	canceled  []string
	cancelErr error
}

func (f *fakeHosting) CreateDeploy(_ context.Context, _ string, _ *domain.Artifact, _ string) (*service.Deploy, error) {
	return nil, errors.New("not used in orchestrator tests")
}

func (f *fakeHosting) UploadFiles(_ context.Context, _ *service.Deploy, _ *domain.Artifact, _ service.FileReader) error {
	return errors.New("not used in orchestrator tests")
}

func (f *fakeHosting) WaitReady(_ context.Context, _ string, _ time.Duration) (*service.Deploy, error) {
	return nil, errors.New("not used in orchestrator tests")
}

func (f *fakeHosting) CancelDeploy(_ context.Context, deployID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.canceled = append(f.canceled, deployID)
	return nil
}
