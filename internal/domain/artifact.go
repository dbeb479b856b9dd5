package domain

import "time"

// ArtifactFile is a single built file, addressed by its site-relative path.
// Hosting providers negotiate uploads by SHA-1 content digest.
type ArtifactFile struct {
	Path string `json:"path"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// Artifact is the output of a site build: the root directory on disk and the
// digested file set. A failed deploy never discards the artifact.
type Artifact struct {
	Root      string         `json:"root"`
	Files     []ArtifactFile `json:"files"`
	Version   string         `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
}

// Digest returns the SHA-1 of a file by site-relative path.
func (a *Artifact) Digest(path string) (string, bool) {
	for _, f := range a.Files {
		if f.Path == path {
			return f.SHA1, true
		}
	}
	return "", false
}

// TotalSize returns the summed byte size of all files.
func (a *Artifact) TotalSize() int64 {
	var total int64
	for _, f := range a.Files {
		total += f.Size
	}
	return total
}

// Len returns the number of files in the artifact.
func (a *Artifact) Len() int {
	return len(a.Files)
}
