package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/svnwc/internal/controls/filesystem"
	"github.com/temirov/svnwc/internal/controls/shared"
	"github.com/temirov/svnwc/internal/execshell"
	"github.com/temirov/svnwc/internal/svncmd"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveTreeReplicator returns the provided replicator or a deep-copy default.
func ResolveTreeReplicator(existing shared.TreeReplicator) shared.TreeReplicator {
	if existing != nil {
		return existing
	}
	return filesystem.CopyTreeReplicator{}
}

// ResolveReadOnlyMarker returns the provided marker or a permission-walking default.
func ResolveReadOnlyMarker(existing shared.ReadOnlyMarker) shared.ReadOnlyMarker {
	if existing != nil {
		return existing
	}
	return filesystem.ReadOnlyWalker{}
}

// ResolveSubversionExecutor returns the provided executor or constructs a shell-backed default.
func ResolveSubversionExecutor(existing shared.SubversionExecutor, logger *zap.Logger, eventObserver execshell.CommandEventObserver) (shared.SubversionExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, commandRunner, eventObserver)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveWorkingCopyClient returns the provided client or constructs one from the executor.
func ResolveWorkingCopyClient(existing shared.WorkingCopyClient, executor shared.SubversionExecutor) (shared.WorkingCopyClient, error) {
	if existing != nil {
		return existing, nil
	}
	return svncmd.NewClient(executor)
}
