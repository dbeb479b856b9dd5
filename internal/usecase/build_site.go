package usecase

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/render"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/spf13/afero"
)

const (
	// IndexFile is the entry document of the built site.
	IndexFile = "index.html"

	buildDirPerm  = 0755
	buildFilePerm = 0644
)

// BuildConfig is the input of a site build.
type BuildConfig struct {
	OutputDir string
	Version   *domain.Version
	LinkURL   string
	Title     string
}

// BuildSiteUseCase renders the page and writes the deployable file set.
type BuildSiteUseCase struct {
	FsRepo repository.FileSystemRepository
}

// Execute renders the document, stages the embedded assets, and returns the
// digested artifact. The build is deterministic for equal inputs.
func (uc *BuildSiteUseCase) Execute(ctx context.Context, cfg BuildConfig) (*domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files := map[string][]byte{}
	var doc bytes.Buffer
	err := render.WriteDocument(&doc, render.DocumentConfig{
		Title: cfg.Title,
		Page: render.PageConfig{
			Version: cfg.Version,
			LinkURL: cfg.LinkURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	files[IndexFile] = doc.Bytes()
	assets, err := render.Assets()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded assets: %w", err)
	}
	for name, content := range assets {
		files[name] = content
	}
	if err := uc.FsRepo.MkdirAll(cfg.OutputDir, buildDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	artifact := &domain.Artifact{
		Root:      cfg.OutputDir,
		Version:   versionOrDefault(cfg.Version).Display(),
		CreatedAt: time.Now(),
	}
	for _, path := range paths {
		content := files[path]
		target := filepath.Join(cfg.OutputDir, path)
		if err := afero.WriteFile(uc.FsRepo, target, content, buildFilePerm); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", target, err)
		}
		sum := sha1.Sum(content)
		artifact.Files = append(artifact.Files, domain.ArtifactFile{
			Path: path,
			SHA1: hex.EncodeToString(sum[:]),
			Size: int64(len(content)),
		})
	}
	return artifact, nil
}

func versionOrDefault(v *domain.Version) *domain.Version {
	if v == nil {
		return domain.NewVersion("")
	}
	return v
}
