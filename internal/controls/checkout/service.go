// Package checkout synchronizes writable Subversion working copies for
// checkout controls, creating them on first run and updating them afterwards.
package checkout

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
	targetNotWorkingCopyTemplateConstant    = "target path %s exists but is not a Subversion working copy"
	targetInspectionFailureTemplateConstant = "failed to inspect target path %s: %w"
	parentCreationFailureTemplateConstant   = "failed to create parent directory %s: %w"
	checkoutFailureTemplateConstant         = "failed to check out %s: %w"
	updateFailureTemplateConstant           = "failed to update working copy at %s: %w"
	parentDirectoryPermissionsConstant      = fs.FileMode(0o755)
	plannedActionLogMessageConstant         = "planned control action"
	controlLogFieldNameConstant             = "control"
	actionLogFieldNameConstant              = "action"
	targetPathLogFieldNameConstant          = "target_path"
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

// TargetNotWorkingCopyError reports a target path occupied by something other than a working copy.
type TargetNotWorkingCopyError struct {
	TargetPath string
}

// Error describes the occupied target path.
func (occupiedError TargetNotWorkingCopyError) Error() string {
	return fmt.Sprintf(targetNotWorkingCopyTemplateConstant, occupiedError.TargetPath)
}

// Dependencies enumerates external collaborators required for checkout operations.
type Dependencies struct {
	Subversion shared.WorkingCopyClient
	FileSystem shared.FileSystem
	Logger     *zap.Logger
}

// Options configures a checkout control run.
type Options struct {
	ControlName   string
	RepositoryURL string
	TargetPath    string
	DryRun        bool
}

// Result captures the observable outcome of a checkout control run.
type Result struct {
	TargetPath string
	Action     shared.ActionName
	ToolOutput string
	DryRun     bool
}

// Service keeps a working copy synchronized with its repository URL.
type Service struct {
	subversion shared.WorkingCopyClient
	fileSystem shared.FileSystem
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Subversion == nil {
		return nil, ErrSubversionClientNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{subversion: dependencies.Subversion, fileSystem: dependencies.FileSystem, logger: logger}, nil
}

// Run materializes the working copy: a fresh checkout when the target is
// absent, an update when it already holds a working copy. A target occupied by
// anything else fails the run.
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

	if targetExists {
		if !service.subversion.IsWorkingCopy(trimmedTargetPath) {
			return Result{}, TargetNotWorkingCopyError{TargetPath: trimmedTargetPath}
		}
		return service.updateWorkingCopy(executionContext, trimmedControlName, trimmedTargetPath, options.DryRun)
	}

	return service.createWorkingCopy(executionContext, trimmedControlName, trimmedRepositoryURL, trimmedTargetPath, options.DryRun)
}

func (service *Service) updateWorkingCopy(executionContext context.Context, controlName string, targetPath string, dryRun bool) (Result, error) {
	if dryRun {
		service.logPlannedAction(controlName, shared.ActionUpdate, targetPath)
		return Result{TargetPath: targetPath, Action: shared.ActionUpdate, DryRun: true}, nil
	}

	executionResult, updateError := service.subversion.Update(executionContext, svncmd.UpdateOptions{WorkingCopyPath: targetPath})
	if updateError != nil {
		return Result{}, fmt.Errorf(updateFailureTemplateConstant, targetPath, updateError)
	}
	return Result{TargetPath: targetPath, Action: shared.ActionUpdate, ToolOutput: executionResult.StandardOutput}, nil
}

func (service *Service) createWorkingCopy(executionContext context.Context, controlName string, repositoryURL string, targetPath string, dryRun bool) (Result, error) {
	if dryRun {
		service.logPlannedAction(controlName, shared.ActionCheckout, targetPath)
		return Result{TargetPath: targetPath, Action: shared.ActionCheckout, DryRun: true}, nil
	}

	parentDirectory := filepath.Dir(targetPath)
	if creationError := service.fileSystem.MkdirAll(parentDirectory, parentDirectoryPermissionsConstant); creationError != nil {
		return Result{}, fmt.Errorf(parentCreationFailureTemplateConstant, parentDirectory, creationError)
	}

	executionResult, checkoutError := service.subversion.Checkout(executionContext, svncmd.CheckoutOptions{RepositoryURL: repositoryURL, TargetPath: targetPath})
	if checkoutError != nil {
		return Result{}, fmt.Errorf(checkoutFailureTemplateConstant, repositoryURL, checkoutError)
	}
	return Result{TargetPath: targetPath, Action: shared.ActionCheckout, ToolOutput: executionResult.StandardOutput}, nil
}

func (service *Service) logPlannedAction(controlName string, action shared.ActionName, targetPath string) {
	service.logger.Info(plannedActionLogMessageConstant,
		zap.String(controlLogFieldNameConstant, controlName),
		zap.String(actionLogFieldNameConstant, string(action)),
		zap.String(targetPathLogFieldNameConstant, targetPath),
	)
}
