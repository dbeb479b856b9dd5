package repository

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
)

// CommitInfo describes the local HEAD commit. Deploys are labeled with it so
// the hosting provider's deploy log points back at a source revision.
type CommitInfo struct {
	Branch  string
	SHA     string
	Subject string
}

// GitRepository reads metadata from the local working copy.
type GitRepository interface {
	Head() (*CommitInfo, error)
}

type gitRepository struct {
	repo *git.Repository
}

// NewGitRepository opens the repository containing the working directory.
func NewGitRepository() (GitRepository, error) {
	repo, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &gitRepository{repo: repo}, nil
}

func (r *gitRepository) Head() (*CommitInfo, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	subject, _, _ := strings.Cut(commit.Message, "\n")
	return &CommitInfo{
		Branch:  ref.Name().Short(),
		SHA:     ref.Hash().String(),
		Subject: strings.TrimSpace(subject),
	}, nil
}
