package controls

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/svnwc/internal/controls/checkout"
	"github.com/temirov/svnwc/internal/controls/export"
	"github.com/temirov/svnwc/internal/controls/shared"
)

const (
	checkoutServiceMissingMessageConstant = "checkout service not configured"
	exportServiceMissingMessageConstant   = "export service not configured"
	forceOverwriteAttributeConstant       = "force-overwrite"
	readOnlyAttributeConstant             = "read-only"
	dryRunAttributeConstant               = "dry-run"
)

// ErrCheckoutServiceNotConfigured indicates a checkout control was built without its service.
var ErrCheckoutServiceNotConfigured = errors.New(checkoutServiceMissingMessageConstant)

// ErrExportServiceNotConfigured indicates an export control was built without its service.
var ErrExportServiceNotConfigured = errors.New(exportServiceMissingMessageConstant)

// Description summarizes a control configuration for presentation.
type Description struct {
	Name          string
	Type          shared.ControlType
	RepositoryURL string
	TargetPath    string
	Attributes    []string
}

// RunOutcome captures the observable result of one control run.
type RunOutcome struct {
	ControlName string
	ControlType shared.ControlType
	Action      shared.ActionName
	TargetPath  string
	ToolOutput  string
	DryRun      bool
}

// Control is one named synchronization unit executable against local state.
type Control interface {
	Name() string
	Describe() Description
	Run(executionContext context.Context) (RunOutcome, error)
}

// CheckoutControl keeps one working copy synchronized according to its options.
type CheckoutControl struct {
	service *checkout.Service
	options checkout.Options
}

// NewCheckoutControl binds a checkout service to immutable control options.
func NewCheckoutControl(service *checkout.Service, options checkout.Options) (*CheckoutControl, error) {
	if service == nil {
		return nil, ErrCheckoutServiceNotConfigured
	}
	if len(strings.TrimSpace(options.ControlName)) == 0 {
		return nil, checkout.ErrControlNameRequired
	}
	if len(strings.TrimSpace(options.RepositoryURL)) == 0 {
		return nil, checkout.ErrRepositoryURLRequired
	}
	if len(strings.TrimSpace(options.TargetPath)) == 0 {
		return nil, checkout.ErrTargetPathRequired
	}
	return &CheckoutControl{service: service, options: options}, nil
}

// Name identifies the control within a collection.
func (control *CheckoutControl) Name() string {
	return control.options.ControlName
}

// Describe summarizes the control configuration.
func (control *CheckoutControl) Describe() Description {
	description := Description{
		Name:          control.options.ControlName,
		Type:          shared.ControlTypeCheckout,
		RepositoryURL: control.options.RepositoryURL,
		TargetPath:    control.options.TargetPath,
	}
	if control.options.DryRun {
		description.Attributes = append(description.Attributes, dryRunAttributeConstant)
	}
	return description
}

// Run checks out or updates the working copy depending on target state.
func (control *CheckoutControl) Run(executionContext context.Context) (RunOutcome, error) {
	result, runError := control.service.Run(executionContext, control.options)
	if runError != nil {
		return RunOutcome{}, runError
	}
	return RunOutcome{
		ControlName: control.options.ControlName,
		ControlType: shared.ControlTypeCheckout,
		Action:      result.Action,
		TargetPath:  result.TargetPath,
		ToolOutput:  result.ToolOutput,
		DryRun:      result.DryRun,
	}, nil
}

// ExportControl materializes one repository tree according to its options.
type ExportControl struct {
	service *export.Service
	options export.Options
}

// NewExportControl binds an export service to immutable control options.
func NewExportControl(service *export.Service, options export.Options) (*ExportControl, error) {
	if service == nil {
		return nil, ErrExportServiceNotConfigured
	}
	if len(strings.TrimSpace(options.ControlName)) == 0 {
		return nil, export.ErrControlNameRequired
	}
	if len(strings.TrimSpace(options.RepositoryURL)) == 0 {
		return nil, export.ErrRepositoryURLRequired
	}
	if len(strings.TrimSpace(options.TargetPath)) == 0 {
		return nil, export.ErrTargetPathRequired
	}
	return &ExportControl{service: service, options: options}, nil
}

// Name identifies the control within a collection.
func (control *ExportControl) Name() string {
	return control.options.ControlName
}

// Describe summarizes the control configuration.
func (control *ExportControl) Describe() Description {
	description := Description{
		Name:          control.options.ControlName,
		Type:          shared.ControlTypeExport,
		RepositoryURL: control.options.RepositoryURL,
		TargetPath:    control.options.TargetPath,
	}
	if control.options.ForceOverwrite {
		description.Attributes = append(description.Attributes, forceOverwriteAttributeConstant)
	}
	if control.options.ReadOnly {
		description.Attributes = append(description.Attributes, readOnlyAttributeConstant)
	}
	if control.options.DryRun {
		description.Attributes = append(description.Attributes, dryRunAttributeConstant)
	}
	return description
}

// Run exports the repository tree or skips an existing target.
func (control *ExportControl) Run(executionContext context.Context) (RunOutcome, error) {
	result, runError := control.service.Run(executionContext, control.options)
	if runError != nil {
		return RunOutcome{}, runError
	}
	return RunOutcome{
		ControlName: control.options.ControlName,
		ControlType: shared.ControlTypeExport,
		Action:      result.Action,
		TargetPath:  result.TargetPath,
		ToolOutput:  result.ToolOutput,
		DryRun:      result.DryRun,
	}, nil
}
