package importer

import "errors"

var (
	// ErrRepositoryRequired is returned when creating an importer without a repository.
	ErrRepositoryRequired = errors.New("catalog repository is required")

	// ErrNotABundle is returned when the bundle path is not a directory.
	ErrNotABundle = errors.New("bundle path is not a directory")
)
