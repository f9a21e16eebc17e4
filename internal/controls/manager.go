package controls

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	nilControlMessageConstant                 = "control must not be nil"
	emptyControlNameMessageConstant           = "control name must not be empty"
	duplicateControlNameTemplateConstant      = "control name %q is already registered"
	unknownControlNameTemplateConstant        = "no control named %q"
	controlPositionOutOfRangeTemplateConstant = "control position %d out of range for %d controls"
	controlRunFailureTemplateConstant         = "control %q failed: %v"
	runStartedLogMessageConstant              = "running controls"
	runCompletedLogMessageConstant            = "control run completed"
	controlFailedLogMessageConstant           = "control failed"
	controlCountLogFieldNameConstant          = "control_count"
	controlLogFieldNameConstant               = "control"
	succeededCountLogFieldNameConstant        = "succeeded"
	failedCountLogFieldNameConstant           = "failed"
)

// ErrNilControl indicates an append of a nil control.
var ErrNilControl = errors.New(nilControlMessageConstant)

// ErrEmptyControlName indicates an append of a control without a name.
var ErrEmptyControlName = errors.New(emptyControlNameMessageConstant)

// DuplicateControlNameError reports an append that would shadow a registered control.
type DuplicateControlNameError struct {
	ControlName string
}

// Error describes the conflicting name.
func (duplicateError DuplicateControlNameError) Error() string {
	return fmt.Sprintf(duplicateControlNameTemplateConstant, duplicateError.ControlName)
}

// UnknownControlError reports a lookup for a name absent from the collection.
type UnknownControlError struct {
	ControlName string
}

// Error describes the missing name.
func (unknownError UnknownControlError) Error() string {
	return fmt.Sprintf(unknownControlNameTemplateConstant, unknownError.ControlName)
}

// ControlPositionError reports an out-of-range positional lookup.
type ControlPositionError struct {
	Position int
	Count    int
}

// Error describes the invalid position.
func (positionError ControlPositionError) Error() string {
	return fmt.Sprintf(controlPositionOutOfRangeTemplateConstant, positionError.Position, positionError.Count)
}

// ControlRunError wraps the failure of one control during a run.
type ControlRunError struct {
	ControlName string
	Cause       error
}

// Error describes the failed control.
func (runError ControlRunError) Error() string {
	return fmt.Sprintf(controlRunFailureTemplateConstant, runError.ControlName, runError.Cause)
}

// Unwrap exposes the underlying failure.
func (runError ControlRunError) Unwrap() error {
	return runError.Cause
}

// RunSummary aggregates the outcomes of a bulk control run.
type RunSummary struct {
	Outcomes []RunOutcome
	Failures []ControlRunError
}

// SucceededCount reports how many controls completed successfully.
func (summary RunSummary) SucceededCount() int {
	return len(summary.Outcomes)
}

// FailedCount reports how many controls failed.
func (summary RunSummary) FailedCount() int {
	return len(summary.Failures)
}

// Manager holds an ordered, name-addressable collection of controls.
type Manager struct {
	logger          *zap.Logger
	orderedControls []Control
	positionsByName map[string]int
}

// NewManager constructs an empty Manager logging through the provided logger.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger, positionsByName: map[string]int{}}
}

// Append adds a control to the end of the collection, rejecting duplicate names.
func (manager *Manager) Append(control Control) error {
	if control == nil {
		return ErrNilControl
	}
	controlName := control.Name()
	if len(strings.TrimSpace(controlName)) == 0 {
		return ErrEmptyControlName
	}
	if _, registered := manager.positionsByName[controlName]; registered {
		return DuplicateControlNameError{ControlName: controlName}
	}
	manager.positionsByName[controlName] = len(manager.orderedControls)
	manager.orderedControls = append(manager.orderedControls, control)
	return nil
}

// Len reports the number of registered controls.
func (manager *Manager) Len() int {
	return len(manager.orderedControls)
}

// Names returns control names in collection order.
func (manager *Manager) Names() []string {
	names := make([]string, 0, len(manager.orderedControls))
	for _, control := range manager.orderedControls {
		names = append(names, control.Name())
	}
	return names
}

// Has reports whether a control with the provided name is registered.
func (manager *Manager) Has(controlName string) bool {
	_, registered := manager.positionsByName[controlName]
	return registered
}

// ControlAt returns the control at the provided zero-based position.
func (manager *Manager) ControlAt(position int) (Control, error) {
	if position < 0 || position >= len(manager.orderedControls) {
		return nil, ControlPositionError{Position: position, Count: len(manager.orderedControls)}
	}
	return manager.orderedControls[position], nil
}

// ControlByName returns the control registered under the provided name.
func (manager *Manager) ControlByName(controlName string) (Control, error) {
	position, registered := manager.positionsByName[controlName]
	if !registered {
		return nil, UnknownControlError{ControlName: controlName}
	}
	return manager.orderedControls[position], nil
}

// Descriptions summarizes all controls in collection order.
func (manager *Manager) Descriptions() []Description {
	descriptions := make([]Description, 0, len(manager.orderedControls))
	for _, control := range manager.orderedControls {
		descriptions = append(descriptions, control.Describe())
	}
	return descriptions
}

// Clear removes every registered control.
func (manager *Manager) Clear() {
	manager.orderedControls = nil
	manager.positionsByName = map[string]int{}
}

// RunAll executes every control in collection order, continuing past
// failures. The summary carries per-control outcomes; failures are wrapped
// and aggregated into the returned error.
func (manager *Manager) RunAll(executionContext context.Context) (RunSummary, error) {
	return manager.runControls(executionContext, manager.orderedControls)
}

// RunNamed executes the controls registered under the provided names,
// preserving collection order regardless of argument order. Unknown names
// fail the call before any control runs.
func (manager *Manager) RunNamed(executionContext context.Context, controlNames []string) (RunSummary, error) {
	selectedNames := make(map[string]struct{}, len(controlNames))
	for _, controlName := range controlNames {
		if !manager.Has(controlName) {
			return RunSummary{}, UnknownControlError{ControlName: controlName}
		}
		selectedNames[controlName] = struct{}{}
	}

	selectedControls := make([]Control, 0, len(selectedNames))
	for _, control := range manager.orderedControls {
		if _, selected := selectedNames[control.Name()]; selected {
			selectedControls = append(selectedControls, control)
		}
	}

	return manager.runControls(executionContext, selectedControls)
}

func (manager *Manager) runControls(executionContext context.Context, selectedControls []Control) (RunSummary, error) {
	manager.logger.Info(runStartedLogMessageConstant, zap.Int(controlCountLogFieldNameConstant, len(selectedControls)))

	summary := RunSummary{}
	var aggregatedError error
	for _, control := range selectedControls {
		outcome, runError := control.Run(executionContext)
		if runError != nil {
			failure := ControlRunError{ControlName: control.Name(), Cause: runError}
			manager.logger.Error(controlFailedLogMessageConstant,
				zap.String(controlLogFieldNameConstant, control.Name()),
				zap.Error(runError),
			)
			summary.Failures = append(summary.Failures, failure)
			aggregatedError = multierr.Append(aggregatedError, failure)
			continue
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	manager.logger.Info(runCompletedLogMessageConstant,
		zap.Int(succeededCountLogFieldNameConstant, summary.SucceededCount()),
		zap.Int(failedCountLogFieldNameConstant, summary.FailedCount()),
	)
	return summary, aggregatedError
}

// RunByName executes the control registered under the provided name.
func (manager *Manager) RunByName(executionContext context.Context, controlName string) (RunOutcome, error) {
	control, lookupError := manager.ControlByName(controlName)
	if lookupError != nil {
		return RunOutcome{}, lookupError
	}
	outcome, runError := control.Run(executionContext)
	if runError != nil {
		return RunOutcome{}, ControlRunError{ControlName: controlName, Cause: runError}
	}
	return outcome, nil
}
