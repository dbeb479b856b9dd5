package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// PagesRepository publishes a built artifact as a commit on a GitHub Pages
// branch. Publishing replaces the branch tree wholesale: the pages branch
// only ever contains the latest artifact.
type PagesRepository interface {
	Publish(ctx context.Context, branch string, files map[string][]byte, message string) (string, error)
}

type pagesRepository struct {
	client *github.Client
	owner  string
	repo   string
}

// NewPagesRepository creates a PagesRepository backed by the GitHub API.
func NewPagesRepository(token, owner, repo string) (PagesRepository, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("github token cannot be empty")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("pages owner and repo cannot be empty")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &pagesRepository{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}, nil
}

// Publish creates blobs for every artifact file, assembles a tree, commits
// it on top of the branch head (or as a root commit for a fresh branch), and
// moves the branch ref. Returns the new commit SHA.
func (r *pagesRepository) Publish(ctx context.Context, branch string, files map[string][]byte, message string) (string, error) {
	refName := "refs/heads/" + branch
	parentSHA := ""
	ref, _, err := r.client.Git.GetRef(ctx, r.owner, r.repo, refName)
	if err == nil && ref.Object != nil {
		parentSHA = ref.Object.GetSHA()
	}
	entries := make([]*github.TreeEntry, 0, len(files))
	for path, content := range files {
		blob, _, blobErr := r.client.Git.CreateBlob(ctx, r.owner, r.repo, &github.Blob{
			Content:  github.Ptr(string(content)),
			Encoding: github.Ptr("utf-8"),
		})
		if blobErr != nil {
			return "", fmt.Errorf("failed to create blob for %s: %w", path, blobErr)
		}
		entries = append(entries, &github.TreeEntry{
			Path: github.Ptr(strings.TrimPrefix(path, "/")),
			Mode: github.Ptr("100644"),
			Type: github.Ptr("blob"),
			SHA:  blob.SHA,
		})
	}
	tree, _, err := r.client.Git.CreateTree(ctx, r.owner, r.repo, "", entries)
	if err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}
	commit := &github.Commit{
		Message: github.Ptr(message),
		Tree:    tree,
	}
	if parentSHA != "" {
		commit.Parents = []*github.Commit{{SHA: github.Ptr(parentSHA)}}
	}
	created, _, err := r.client.Git.CreateCommit(ctx, r.owner, r.repo, commit, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}
	newRef := &github.Reference{
		Ref:    github.Ptr(refName),
		Object: &github.GitObject{SHA: created.SHA},
	}
	if parentSHA == "" {
		if _, _, err := r.client.Git.CreateRef(ctx, r.owner, r.repo, newRef); err != nil {
			return "", fmt.Errorf("failed to create pages branch: %w", err)
		}
	} else {
		if _, _, err := r.client.Git.UpdateRef(ctx, r.owner, r.repo, newRef, false); err != nil {
			return "", fmt.Errorf("failed to update pages branch: %w", err)
		}
	}
	return created.GetSHA(), nil
}
