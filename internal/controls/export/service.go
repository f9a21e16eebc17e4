// Package export materializes Subversion repository trees as plain
// directories for export controls, optionally replacing existing targets and
// marking the exported files read-only.
package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/svnwc/internal/controls/shared"
	"github.com/temirov/svnwc/internal/svncmd"
)

const (
	controlNameRequiredMessageConstant      = "control name must be provided"
	repositoryURLRequiredMessageConstant    = "repository URL must be provided"
	targetPathRequiredMessageConstant       = "target path must be provided"
	subversionClientMissingMessageConstant  = "subversion client not configured"
	fileSystemMissingMessageConstant        = "file system not configured"
	treeReplicatorMissingMessageConstant    = "tree replicator not configured"
	readOnlyMarkerMissingMessageConstant    = "read-only marker not configured"
	targetInspectionFailureTemplateConstant = "failed to inspect target path %s: %w"
	stagingCreationFailureTemplateConstant  = "failed to create staging directory: %w"
	exportFailureTemplateConstant           = "failed to export %s: %w"
	targetRemovalFailureTemplateConstant    = "failed to remove existing target %s: %w"
	parentCreationFailureTemplateConstant   = "failed to create parent directory %s: %w"
	replicationFailureTemplateConstant      = "failed to place exported tree at %s: %w"
	stagingDirectoryPatternConstant         = "svnwc-export-*"
	parentDirectoryPermissionsConstant      = fs.FileMode(0o755)
	plannedActionLogMessageConstant         = "planned control action"
	skippedExistingTargetLogMessageConstant = "export skipped because target exists"
	readOnlyMarkingFailedLogMessageConstant = "failed to mark exported files read-only"
	controlLogFieldNameConstant             = "control"
	actionLogFieldNameConstant              = "action"
	targetPathLogFieldNameConstant          = "target_path"
	failedPathsLogFieldNameConstant         = "failed_paths"
)

// ErrControlNameRequired indicates the control name option was empty.
var ErrControlNameRequired = errors.New(controlNameRequiredMessageConstant)

// ErrRepositoryURLRequired indicates the repository URL option was empty.
var ErrRepositoryURLRequired = errors.New(repositoryURLRequiredMessageConstant)

// ErrTargetPathRequired indicates the target path option was empty.
var ErrTargetPathRequired = errors.New(targetPathRequiredMessageConstant)

// ErrSubversionClientNotConfigured indicates the Subversion client dependency was missing.
var ErrSubversionClientNotConfigured = errors.New(subversionClientMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the file system dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrTreeReplicatorNotConfigured indicates the tree replicator dependency was missing.
var ErrTreeReplicatorNotConfigured = errors.New(treeReplicatorMissingMessageConstant)

// ErrReadOnlyMarkerNotConfigured indicates the read-only marker dependency was missing.
var ErrReadOnlyMarkerNotConfigured = errors.New(readOnlyMarkerMissingMessageConstant)

// Dependencies enumerates external collaborators required for export operations.
type Dependencies struct {
	Subversion     shared.WorkingCopyClient
	FileSystem     shared.FileSystem
	Replicator     shared.TreeReplicator
	ReadOnlyMarker shared.ReadOnlyMarker
	Logger         *zap.Logger
}

// Options configures an export control run.
type Options struct {
	ControlName    string
	RepositoryURL  string
	TargetPath     string
	ForceOverwrite bool
	ReadOnly       bool
	DryRun         bool
}

// Result captures the observable outcome of an export control run.
type Result struct {
	TargetPath           string
	Action               shared.ActionName
	ToolOutput           string
	ReadOnlyFailurePaths []string
	DryRun               bool
}

// Service materializes repository trees at target paths.
type Service struct {
	subversion     shared.WorkingCopyClient
	fileSystem     shared.FileSystem
	replicator     shared.TreeReplicator
	readOnlyMarker shared.ReadOnlyMarker
	logger         *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Subversion == nil {
		return nil, ErrSubversionClientNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Replicator == nil {
		return nil, ErrTreeReplicatorNotConfigured
	}
	if dependencies.ReadOnlyMarker == nil {
		return nil, ErrReadOnlyMarkerNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		subversion:     dependencies.Subversion,
		fileSystem:     dependencies.FileSystem,
		replicator:     dependencies.Replicator,
		readOnlyMarker: dependencies.ReadOnlyMarker,
		logger:         logger,
	}, nil
}

// Run materializes the export target. An existing target is left untouched
// unless force overwrite is requested, in which case it is replaced wholesale.
// The export lands in a staging directory first; a failed export leaves any
// existing target intact.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	trimmedControlName := strings.TrimSpace(options.ControlName)
	if len(trimmedControlName) == 0 {
		return Result{}, ErrControlNameRequired
	}

	trimmedRepositoryURL := strings.TrimSpace(options.RepositoryURL)
	if len(trimmedRepositoryURL) == 0 {
		return Result{}, ErrRepositoryURLRequired
	}

	trimmedTargetPath := strings.TrimSpace(options.TargetPath)
	if len(trimmedTargetPath) == 0 {
		return Result{}, ErrTargetPathRequired
	}

	_, statError := service.fileSystem.Stat(trimmedTargetPath)
	targetExists := statError == nil
	if statError != nil && !errors.Is(statError, fs.ErrNotExist) {
		return Result{}, fmt.Errorf(targetInspectionFailureTemplateConstant, trimmedTargetPath, statError)
	}

	if targetExists && !options.ForceOverwrite {
		service.logger.Info(skippedExistingTargetLogMessageConstant,
			zap.String(controlLogFieldNameConstant, trimmedControlName),
			zap.String(targetPathLogFieldNameConstant, trimmedTargetPath),
		)
		return Result{TargetPath: trimmedTargetPath, Action: shared.ActionSkip, DryRun: options.DryRun}, nil
	}

	if options.DryRun {
		service.logger.Info(plannedActionLogMessageConstant,
			zap.String(controlLogFieldNameConstant, trimmedControlName),
			zap.String(actionLogFieldNameConstant, string(shared.ActionExport)),
			zap.String(targetPathLogFieldNameConstant, trimmedTargetPath),
		)
		return Result{TargetPath: trimmedTargetPath, Action: shared.ActionExport, DryRun: true}, nil
	}

	stagingRoot, stagingError := service.fileSystem.MkdirTemp("", stagingDirectoryPatternConstant)
	if stagingError != nil {
		return Result{}, fmt.Errorf(stagingCreationFailureTemplateConstant, stagingError)
	}
	defer func() {
		_ = service.fileSystem.RemoveAll(stagingRoot)
	}()

	stagingTarget := filepath.Join(stagingRoot, filepath.Base(trimmedTargetPath))
	executionResult, exportError := service.subversion.Export(executionContext, svncmd.ExportOptions{RepositoryURL: trimmedRepositoryURL, TargetPath: stagingTarget})
	if exportError != nil {
		return Result{}, fmt.Errorf(exportFailureTemplateConstant, trimmedRepositoryURL, exportError)
	}

	if targetExists {
		if removalError := service.fileSystem.RemoveAll(trimmedTargetPath); removalError != nil {
			return Result{}, fmt.Errorf(targetRemovalFailureTemplateConstant, trimmedTargetPath, removalError)
		}
	}

	parentDirectory := filepath.Dir(trimmedTargetPath)
	if creationError := service.fileSystem.MkdirAll(parentDirectory, parentDirectoryPermissionsConstant); creationError != nil {
		return Result{}, fmt.Errorf(parentCreationFailureTemplateConstant, parentDirectory, creationError)
	}

	if replicationError := service.replicator.Replicate(stagingTarget, trimmedTargetPath); replicationError != nil {
		return Result{}, fmt.Errorf(replicationFailureTemplateConstant, trimmedTargetPath, replicationError)
	}

	result := Result{TargetPath: trimmedTargetPath, Action: shared.ActionExport, ToolOutput: executionResult.StandardOutput}
	if options.ReadOnly {
		result.ReadOnlyFailurePaths = service.markExportReadOnly(trimmedControlName, trimmedTargetPath)
	}
	return result, nil
}

// markExportReadOnly clears write permissions beneath the target. Marking
// failures are logged and surfaced in the result; they never fail the run.
func (service *Service) markExportReadOnly(controlName string, targetPath string) []string {
	failedPaths, markError := service.readOnlyMarker.MarkReadOnly(targetPath)
	if markError != nil {
		service.logger.Warn(readOnlyMarkingFailedLogMessageConstant,
			zap.String(controlLogFieldNameConstant, controlName),
			zap.String(targetPathLogFieldNameConstant, targetPath),
			zap.Error(markError),
		)
	}
	if len(failedPaths) > 0 {
		service.logger.Warn(readOnlyMarkingFailedLogMessageConstant,
			zap.String(controlLogFieldNameConstant, controlName),
			zap.String(targetPathLogFieldNameConstant, targetPath),
			zap.Strings(failedPathsLogFieldNameConstant, failedPaths),
		)
	}
	return failedPaths
}
