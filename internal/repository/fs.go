package repository

import "github.com/spf13/afero"

// FileSystemRepository abstracts filesystem access so builds and state
// persistence can run against an in-memory filesystem in tests.

type FileSystemRepository interface {
	afero.Fs
}
