package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// OSCommandRunner executes commands through os/exec, capturing both output
// streams. Non-zero exit codes come back in the result rather than as errors
// so the executor can log and classify them.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run launches the command and waits for completion.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	execCommand := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	execCommand.Dir = command.Details.WorkingDirectory
	execCommand.Env = overlayEnvironment(command.Details.EnvironmentVariables)

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	execCommand.Stdout = &standardOutput
	execCommand.Stderr = &standardError
	if len(command.Details.StandardInput) > 0 {
		execCommand.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := execCommand.Run()
	executionResult := ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}

	var exitError *exec.ExitError
	switch {
	case runError == nil:
		return executionResult, nil
	case errors.As(runError, &exitError):
		executionResult.ExitCode = exitError.ExitCode()
		return executionResult, nil
	default:
		return ExecutionResult{}, runError
	}
}

// overlayEnvironment appends the per-command variables to the inherited
// environment. A nil return keeps the parent environment untouched.
func overlayEnvironment(environmentVariables map[string]string) []string {
	if len(environmentVariables) == 0 {
		return nil
	}

	mergedEnvironment := append([]string{}, os.Environ()...)
	for environmentKey, environmentValue := range environmentVariables {
		mergedEnvironment = append(mergedEnvironment, environmentKey+"="+environmentValue)
	}
	return mergedEnvironment
}
