// Package pipeline loads the sitekit.yaml manifest: the declarative
// description of the build, verify and deploy stages a pipeline run follows.
package pipeline

import (
	"fmt"
	"time"

	"github.com/ayham/sitekit/internal/repository"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultManifestPath is the manifest file looked up at the project root.
const DefaultManifestPath = "sitekit.yaml"

// Stage names accepted in the manifest, in their canonical order.
const (
	StageBuild  = "build"
	StageVerify = "verify"
	StageDeploy = "deploy"
)

// Stage is one manifest entry. Zero values mean the orchestrator defaults.
type Stage struct {
	Name    string        `yaml:"name"`
	Skip    bool          `yaml:"skip,omitempty"`
	Retries uint64        `yaml:"retries,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Manifest is the parsed pipeline definition.
type Manifest struct {
	Stages   []Stage  `yaml:"stages"`
	Provider string   `yaml:"provider,omitempty"`
	Env      []string `yaml:"env,omitempty"`
}

// Default returns the manifest used when no file is present: the three
// canonical stages with orchestrator defaults.
func Default() *Manifest {
	return &Manifest{
		Stages: []Stage{
			{Name: StageBuild},
			{Name: StageVerify},
			{Name: StageDeploy},
		},
	}
}

// Load reads and validates a manifest. A missing file yields Default().
func Load(fs repository.FileSystemRepository, path string) (*Manifest, error) {
	if path == "" {
		path = DefaultManifestPath
	}
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to check manifest: %w", err)
	}
	if !exists {
		return Default(), nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(m.Stages) == 0 {
		m.Stages = Default().Stages
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate rejects unknown or duplicated stages and enforces canonical
// ordering: a deploy can never precede the build that produces its artifact.
func (m *Manifest) Validate() error {
	if m.Provider != "" && m.Provider != "netlify" && m.Provider != "pages" {
		return fmt.Errorf("unknown provider: %s", m.Provider)
	}
	order := map[string]int{StageBuild: 0, StageVerify: 1, StageDeploy: 2}
	seen := map[string]bool{}
	last := -1
	for _, s := range m.Stages {
		rank, ok := order[s.Name]
		if !ok {
			return fmt.Errorf("unknown stage: %s", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate stage: %s", s.Name)
		}
		seen[s.Name] = true
		if rank < last {
			return fmt.Errorf("stage %s is out of order", s.Name)
		}
		last = rank
	}
	return nil
}

// StageNamed returns the manifest entry for name, or a zero-valued stage
// when the manifest omits it.
func (m *Manifest) StageNamed(name string) (Stage, bool) {
	for _, s := range m.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}
