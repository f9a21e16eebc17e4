package controls

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/svnwc/internal/controls/checkout"
	"github.com/temirov/svnwc/internal/controls/dependencies"
	"github.com/temirov/svnwc/internal/controls/export"
	"github.com/temirov/svnwc/internal/controls/shared"
	pathutils "github.com/temirov/svnwc/internal/utils/path"
)

const (
	subversionClientMissingMessageConstant     = "subversion client not configured"
	parentURLResolutionFailureTemplateConstant = "failed to resolve parent URL %s: %w"
)

// ErrSubversionClientNotConfigured indicates the builder was invoked without a Subversion client.
var ErrSubversionClientNotConfigured = errors.New(subversionClientMissingMessageConstant)

// BuilderDependencies enumerates collaborators used to turn a manifest into controls.
type BuilderDependencies struct {
	Subversion     shared.WorkingCopyClient
	FileSystem     shared.FileSystem
	Replicator     shared.TreeReplicator
	ReadOnlyMarker shared.ReadOnlyMarker
	PathExpander   *pathutils.HomeExpander
	Logger         *zap.Logger
}

// BuildOptions adjusts how manifest entries become controls.
type BuildOptions struct {
	DryRun bool
}

// BuildManager validates the manifest and turns its entries into a populated
// Manager, preserving document order. Parent URLs are resolved to their
// latest child before the corresponding control is built.
func BuildManager(executionContext context.Context, manifest Manifest, builderDependencies BuilderDependencies, buildOptions BuildOptions) (*Manager, error) {
	if builderDependencies.Subversion == nil {
		return nil, ErrSubversionClientNotConfigured
	}
	if validationError := manifest.Validate(); validationError != nil {
		return nil, validationError
	}

	fileSystem := dependencies.ResolveFileSystem(builderDependencies.FileSystem)
	treeReplicator := dependencies.ResolveTreeReplicator(builderDependencies.Replicator)
	readOnlyMarker := dependencies.ResolveReadOnlyMarker(builderDependencies.ReadOnlyMarker)
	pathExpander := builderDependencies.PathExpander
	if pathExpander == nil {
		pathExpander = pathutils.NewHomeExpander()
	}

	checkoutService, checkoutServiceError := checkout.NewService(checkout.Dependencies{
		Subversion: builderDependencies.Subversion,
		FileSystem: fileSystem,
		Logger:     builderDependencies.Logger,
	})
	if checkoutServiceError != nil {
		return nil, checkoutServiceError
	}

	exportService, exportServiceError := export.NewService(export.Dependencies{
		Subversion:     builderDependencies.Subversion,
		FileSystem:     fileSystem,
		Replicator:     treeReplicator,
		ReadOnlyMarker: readOnlyMarker,
		Logger:         builderDependencies.Logger,
	})
	if exportServiceError != nil {
		return nil, exportServiceError
	}

	manager := NewManager(builderDependencies.Logger)
	for entryIndex, entry := range manifest.Controls {
		control, buildError := buildControl(executionContext, entry, builderDependencies.Subversion, pathExpander, checkoutService, exportService, buildOptions)
		if buildError != nil {
			return nil, ManifestEntryError{Position: entryIndex + 1, Name: strings.TrimSpace(entry.Name), Cause: buildError}
		}
		if appendError := manager.Append(control); appendError != nil {
			return nil, ManifestEntryError{Position: entryIndex + 1, Name: strings.TrimSpace(entry.Name), Cause: appendError}
		}
	}
	return manager, nil
}

func buildControl(executionContext context.Context, entry ManifestEntry, subversionClient shared.WorkingCopyClient, pathExpander *pathutils.HomeExpander, checkoutService *checkout.Service, exportService *export.Service, buildOptions BuildOptions) (Control, error) {
	controlType, typeError := entry.ControlType()
	if typeError != nil {
		return nil, typeError
	}

	repositoryURL, resolutionError := resolveEntrySource(executionContext, entry, subversionClient)
	if resolutionError != nil {
		return nil, resolutionError
	}
	targetPath := pathExpander.Expand(strings.TrimSpace(entry.TargetPath))

	switch controlType {
	case shared.ControlTypeExport:
		return NewExportControl(exportService, export.Options{
			ControlName:    strings.TrimSpace(entry.Name),
			RepositoryURL:  repositoryURL,
			TargetPath:     targetPath,
			ForceOverwrite: entry.ForceOverwrite,
			ReadOnly:       entry.ReadOnly,
			DryRun:         buildOptions.DryRun,
		})
	default:
		return NewCheckoutControl(checkoutService, checkout.Options{
			ControlName:   strings.TrimSpace(entry.Name),
			RepositoryURL: repositoryURL,
			TargetPath:    targetPath,
			DryRun:        buildOptions.DryRun,
		})
	}
}

func resolveEntrySource(executionContext context.Context, entry ManifestEntry, subversionClient shared.WorkingCopyClient) (string, error) {
	trimmedRepositoryURL := strings.TrimSpace(entry.RepositoryURL)
	if len(trimmedRepositoryURL) > 0 {
		return trimmedRepositoryURL, nil
	}

	trimmedParentURL := strings.TrimSpace(entry.ParentURL)
	resolvedURL, resolutionError := subversionClient.ResolveLatestChild(executionContext, trimmedParentURL)
	if resolutionError != nil {
		return "", fmt.Errorf(parentURLResolutionFailureTemplateConstant, trimmedParentURL, resolutionError)
	}
	return resolvedURL, nil
}
