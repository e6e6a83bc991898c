package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalFileSystem implements ports.FileSystemPort on the host filesystem.
type LocalFileSystem struct{}

func NewLocalFileSystem() *LocalFileSystem {
	return &LocalFileSystem{}
}

// Creates a directory and its parents if not present. Returns non nil error if
// the directory is already present and force flag is false, or if the path
// exists but isn't a directory.
func (lfs *LocalFileSystem) CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	switch {
	case err == nil:
		if !stat.IsDir() {
			return fmt.Errorf("existing path %s isn't a directory", dirPath)
		}
		if !force {
			return fmt.Errorf("directory %s already exists", dirPath)
		}
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("error in getting directory stat %s : %w", dirPath, err)
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return fmt.Errorf("error in creating all directories %s : %w", dirPath, err)
	}
	return nil
}

// Returns the names of all files matching the glob pattern.
func (lfs *LocalFileSystem) ReadDir(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// Creates a file for writing. With force the file is truncated if it exists,
// otherwise an existing file is an error.
func (lfs *LocalFileSystem) CreateFile(filePath string, force bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("error in creating file %s : %w", filePath, err)
	}
	return file, nil
}

// Deletes a file.
func (lfs *LocalFileSystem) DeleteFile(filePath string) error {
	return os.Remove(filePath)
}
