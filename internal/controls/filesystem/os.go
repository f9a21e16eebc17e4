// Package filesystem provides operating-system backed implementations of the
// filesystem collaborators consumed by control services.
package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
)

const readOnlyFilePermissionsConstant = fs.FileMode(0o444)

// OSFileSystem implements shared.FileSystem using the operating system.
type OSFileSystem struct{}

// Stat returns file information for the provided path.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll creates the directory hierarchy for the provided path.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// MkdirTemp creates a uniquely named directory beneath the parent path.
func (OSFileSystem) MkdirTemp(parentPath string, namePattern string) (string, error) {
	return os.MkdirTemp(parentPath, namePattern)
}

// RemoveAll deletes the path and any children it contains.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Abs resolves the absolute representation of the provided path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// CopyTreeReplicator copies directory trees with a deep filesystem copy.
type CopyTreeReplicator struct{}

// Replicate copies the source tree into the destination path preserving permissions.
func (CopyTreeReplicator) Replicate(sourcePath string, destinationPath string) error {
	return copy.Copy(sourcePath, destinationPath, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
	})
}

// ReadOnlyWalker marks regular files read-only beneath a root path.
type ReadOnlyWalker struct{}

// MarkReadOnly walks the root path and clears write permissions on regular files.
// Paths whose permissions could not be changed are collected rather than aborting the walk.
func (ReadOnlyWalker) MarkReadOnly(rootPath string) ([]string, error) {
	failedPaths := []string{}
	walkError := filepath.WalkDir(rootPath, func(candidatePath string, entry fs.DirEntry, visitError error) error {
		if visitError != nil {
			return visitError
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		if permissionError := os.Chmod(candidatePath, readOnlyFilePermissionsConstant); permissionError != nil {
			failedPaths = append(failedPaths, candidatePath)
		}
		return nil
	})
	return failedPaths, walkError
}
