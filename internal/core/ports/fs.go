package ports

import "os"

// FileSystemPort abstracts the filesystem operations the store needs.
type FileSystemPort interface {
	CreateDir(dirPath string, permission os.FileMode, force bool) error
	ReadDir(pattern string) ([]string, error)
	CreateFile(filePath string, force bool) (*os.File, error)
	DeleteFile(filePath string) error
}
