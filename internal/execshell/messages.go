package execshell

import (
	"fmt"
	"strings"
)

const (
	commandArgumentsJoinSeparatorConstant = " "
	standardErrorSuffixTemplateConstant   = ": %s"
	emptyStringConstant                   = ""
)

const (
	unknownFailureMessageConstant        = "unknown error"
	defaultWorkingDirectoryLabelConstant = "current directory"
	fallbackUnknownValueLabelConstant    = "unknown"
	flagArgumentPrefixConstant           = "-"
)

const (
	subversionCheckoutSubcommandNameConstant = "checkout"
	subversionUpdateSubcommandNameConstant   = "update"
	subversionExportSubcommandNameConstant   = "export"
	subversionListSubcommandNameConstant     = "list"
	subversionInfoSubcommandNameConstant     = "info"
)

const (
	fallbackStartTemplateConstant            = "Running %s"
	fallbackSuccessTemplateConstant          = "Completed %s"
	fallbackFailureTemplateConstant          = "%s failed with exit code %d%s"
	fallbackExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectoryLabelTemplateConstant    = " (in %s)"
)

const (
	subversionCheckoutStartTemplateConstant            = "Checking out %s into %s"
	subversionCheckoutSuccessTemplateConstant          = "Checked out %s into %s"
	subversionCheckoutFailureTemplateConstant          = "Failed to check out %s into %s (exit code %d%s)"
	subversionCheckoutExecutionFailureTemplateConstant = "Unable to check out %s into %s: %s"
	subversionUpdateStartTemplateConstant              = "Updating working copy at %s"
	subversionUpdateSuccessTemplateConstant            = "Updated working copy at %s"
	subversionUpdateFailureTemplateConstant            = "Failed to update working copy at %s (exit code %d%s)"
	subversionUpdateExecutionFailureTemplateConstant   = "Unable to update working copy at %s: %s"
	subversionExportStartTemplateConstant              = "Exporting %s to %s"
	subversionExportSuccessTemplateConstant            = "Exported %s to %s"
	subversionExportFailureTemplateConstant            = "Failed to export %s to %s (exit code %d%s)"
	subversionExportExecutionFailureTemplateConstant   = "Unable to export %s to %s: %s"
	subversionListStartTemplateConstant                = "Listing entries under %s"
	subversionListSuccessTemplateConstant              = "Listed %d entries under %s"
	subversionListFailureTemplateConstant              = "Failed to list entries under %s (exit code %d%s)"
	subversionListExecutionFailureTemplateConstant     = "Unable to list entries under %s: %s"
	subversionInfoStartTemplateConstant                = "Inspecting %s"
	subversionInfoSuccessTemplateConstant              = "Inspected %s"
	subversionInfoFailureTemplateConstant              = "Failed to inspect %s (exit code %d%s)"
	subversionInfoExecutionFailureTemplateConstant     = "Unable to inspect %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle
// events. Recognized Subversion subcommands are narrated in domain terms;
// anything else is described by its argument vector.
type CommandMessageFormatter struct{}

// commandNarrative carries the message for every lifecycle outcome of one invocation.
type commandNarrative struct {
	started         string
	succeeded       string
	failed          string
	executionFailed string
}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.narrate(command, ExecutionResult{}, nil).started
}

// BuildCompletedMessage formats the message describing a finished command,
// selecting the success or failure wording from the exit code.
func (formatter CommandMessageFormatter) BuildCompletedMessage(command ShellCommand, result ExecutionResult) string {
	narrative := formatter.narrate(command, result, nil)
	if result.ExitCode == 0 {
		return narrative.succeeded
	}
	return narrative.failed
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.narrate(command, result, nil).failed
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.narrate(command, ExecutionResult{}, failure).executionFailed
}

func (formatter CommandMessageFormatter) narrate(command ShellCommand, result ExecutionResult, failure error) commandNarrative {
	if command.Name == CommandSubversion && len(command.Details.Arguments) > 0 {
		if narrative, recognized := formatter.subversionNarrative(command, result, failure); recognized {
			return narrative
		}
	}
	return formatter.fallbackNarrative(command, result, failure)
}

func (formatter CommandMessageFormatter) subversionNarrative(command ShellCommand, result ExecutionResult, failure error) (commandNarrative, bool) {
	operands := positionalOperands(command.Details.Arguments[1:])
	exitDetail := formatStandardErrorDetail(result.StandardError)
	failureLabel := describeFailureCause(failure)

	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case subversionCheckoutSubcommandNameConstant:
		repositoryURL := labelOrUnknown(operandAt(operands, 0))
		targetPath := labelOrUnknown(operandAt(operands, 1))
		return commandNarrative{
			started:         fmt.Sprintf(subversionCheckoutStartTemplateConstant, repositoryURL, targetPath),
			succeeded:       fmt.Sprintf(subversionCheckoutSuccessTemplateConstant, repositoryURL, targetPath),
			failed:          fmt.Sprintf(subversionCheckoutFailureTemplateConstant, repositoryURL, targetPath, result.ExitCode, exitDetail),
			executionFailed: fmt.Sprintf(subversionCheckoutExecutionFailureTemplateConstant, repositoryURL, targetPath, failureLabel),
		}, true
	case subversionUpdateSubcommandNameConstant:
		workingCopyPath := operandAt(operands, 0)
		if len(workingCopyPath) == 0 {
			workingCopyPath = workingDirectoryOrDefault(command)
		}
		return commandNarrative{
			started:         fmt.Sprintf(subversionUpdateStartTemplateConstant, workingCopyPath),
			succeeded:       fmt.Sprintf(subversionUpdateSuccessTemplateConstant, workingCopyPath),
			failed:          fmt.Sprintf(subversionUpdateFailureTemplateConstant, workingCopyPath, result.ExitCode, exitDetail),
			executionFailed: fmt.Sprintf(subversionUpdateExecutionFailureTemplateConstant, workingCopyPath, failureLabel),
		}, true
	case subversionExportSubcommandNameConstant:
		repositoryURL := labelOrUnknown(operandAt(operands, 0))
		targetPath := labelOrUnknown(operandAt(operands, 1))
		return commandNarrative{
			started:         fmt.Sprintf(subversionExportStartTemplateConstant, repositoryURL, targetPath),
			succeeded:       fmt.Sprintf(subversionExportSuccessTemplateConstant, repositoryURL, targetPath),
			failed:          fmt.Sprintf(subversionExportFailureTemplateConstant, repositoryURL, targetPath, result.ExitCode, exitDetail),
			executionFailed: fmt.Sprintf(subversionExportExecutionFailureTemplateConstant, repositoryURL, targetPath, failureLabel),
		}, true
	case subversionListSubcommandNameConstant:
		repositoryURL := labelOrUnknown(operandAt(operands, 0))
		return commandNarrative{
			started:         fmt.Sprintf(subversionListStartTemplateConstant, repositoryURL),
			succeeded:       fmt.Sprintf(subversionListSuccessTemplateConstant, countListedEntries(result.StandardOutput), repositoryURL),
			failed:          fmt.Sprintf(subversionListFailureTemplateConstant, repositoryURL, result.ExitCode, exitDetail),
			executionFailed: fmt.Sprintf(subversionListExecutionFailureTemplateConstant, repositoryURL, failureLabel),
		}, true
	case subversionInfoSubcommandNameConstant:
		inspectionTarget := operandAt(operands, 0)
		if len(inspectionTarget) == 0 {
			inspectionTarget = workingDirectoryOrDefault(command)
		}
		return commandNarrative{
			started:         fmt.Sprintf(subversionInfoStartTemplateConstant, inspectionTarget),
			succeeded:       fmt.Sprintf(subversionInfoSuccessTemplateConstant, inspectionTarget),
			failed:          fmt.Sprintf(subversionInfoFailureTemplateConstant, inspectionTarget, result.ExitCode, exitDetail),
			executionFailed: fmt.Sprintf(subversionInfoExecutionFailureTemplateConstant, inspectionTarget, failureLabel),
		}, true
	default:
		return commandNarrative{}, false
	}
}

func (formatter CommandMessageFormatter) fallbackNarrative(command ShellCommand, result ExecutionResult, failure error) commandNarrative {
	commandLabel := formatter.commandLabel(command)
	return commandNarrative{
		started:         fmt.Sprintf(fallbackStartTemplateConstant, commandLabel),
		succeeded:       fmt.Sprintf(fallbackSuccessTemplateConstant, commandLabel),
		failed:          fmt.Sprintf(fallbackFailureTemplateConstant, commandLabel, result.ExitCode, formatStandardErrorDetail(result.StandardError)),
		executionFailed: fmt.Sprintf(fallbackExecutionFailureTemplateConstant, commandLabel, describeFailureCause(failure)),
	}
}

// commandLabel renders the executable with its arguments and, when known, the
// working directory, such as "svn cleanup (in /tmp/project)".
func (formatter CommandMessageFormatter) commandLabel(command ShellCommand) string {
	commandLabel := describeCommand(command)
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectoryLabelTemplateConstant, workingDirectory)
}

func workingDirectoryOrDefault(command ShellCommand) string {
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return workingDirectory
}

func describeFailureCause(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func operandAt(operands []string, index int) string {
	if index < len(operands) {
		return operands[index]
	}
	return emptyStringConstant
}

func labelOrUnknown(value string) string {
	if len(value) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

// positionalOperands drops option arguments, keeping URLs and paths in order.
func positionalOperands(arguments []string) []string {
	operands := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		candidate := strings.TrimSpace(argument)
		if len(candidate) == 0 || strings.HasPrefix(candidate, flagArgumentPrefixConstant) {
			continue
		}
		operands = append(operands, candidate)
	}
	return operands
}

func countListedEntries(listing string) int {
	entryCount := 0
	for _, line := range strings.Split(listing, "\n") {
		if len(strings.TrimSpace(line)) > 0 {
			entryCount++
		}
	}
	return entryCount
}
