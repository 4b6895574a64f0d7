package fsutil

import (
	"io"
	"io/fs"
)

// FileStore provides an interface for file system operations
type FileStore interface {
	// ReadFileAsStream opens a file and returns a reader
	ReadFileAsStream(path string) (io.ReadCloser, error)

	// WriteFile writes data to a file, creating parent directories as needed
	WriteFile(path string, data []byte) error

	// Stat returns file info for path
	Stat(path string) (fs.FileInfo, error)

	// MakeDirectory creates a new directory and all necessary parents
	MakeDirectory(path string) error

	// Remove deletes a single file. Removing a missing file is not an error.
	Remove(path string) error
}
