package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/svnwc/internal/execshell"
	"github.com/temirov/svnwc/internal/svncmd"
)

// ControlType identifies the Subversion operation a control performs.
type ControlType string

const (
	// ControlTypeCheckout keeps a writable working copy synchronized with a repository URL.
	ControlTypeCheckout ControlType = "checkout"
	// ControlTypeExport materializes a repository URL as a plain directory tree without metadata.
	ControlTypeExport ControlType = "export"
)

// ActionName identifies the concrete operation a control run performed or planned.
type ActionName string

const (
	// ActionCheckout indicates a fresh working copy was created.
	ActionCheckout ActionName = "checkout"
	// ActionUpdate indicates an existing working copy was synchronized.
	ActionUpdate ActionName = "update"
	// ActionExport indicates the target tree was materialized from the repository.
	ActionExport ActionName = "export"
	// ActionSkip indicates the control left an existing target untouched.
	ActionSkip ActionName = "skip"
)

// FileSystem abstracts filesystem interactions for control services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	MkdirTemp(parentPath string, namePattern string) (string, error)
	RemoveAll(path string) error
	Abs(path string) (string, error)
}

// TreeReplicator copies a directory tree into a destination path.
type TreeReplicator interface {
	Replicate(sourcePath string, destinationPath string) error
}

// ReadOnlyMarker clears write permissions on regular files beneath a root path.
// It returns the paths it failed to adjust alongside any traversal error.
type ReadOnlyMarker interface {
	MarkReadOnly(rootPath string) ([]string, error)
}

// SubversionExecutor runs svn commands and reports their results.
type SubversionExecutor interface {
	ExecuteSubversion(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// WorkingCopyClient exposes the Subversion operations control services rely on.
type WorkingCopyClient interface {
	Checkout(executionContext context.Context, options svncmd.CheckoutOptions) (execshell.ExecutionResult, error)
	Update(executionContext context.Context, options svncmd.UpdateOptions) (execshell.ExecutionResult, error)
	Export(executionContext context.Context, options svncmd.ExportOptions) (execshell.ExecutionResult, error)
	ListEntries(executionContext context.Context, repositoryURL string) ([]string, error)
	ResolveLatestChild(executionContext context.Context, parentURL string) (string, error)
	IsWorkingCopy(candidatePath string) bool
}
