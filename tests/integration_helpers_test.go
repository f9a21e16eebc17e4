package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type integrationCommandOptions struct {
	PathVariable         string
	EnvironmentOverrides map[string]string
}

// repositoryRootDirectory returns the module root, one level above the tests
// package, where go run resolves the main package.
func repositoryRootDirectory(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		testInstance.Fatalf("cannot resolve working directory: %v", workingDirectoryError)
	}
	return filepath.Dir(workingDirectory)
}

func runIntegrationCommand(testInstance *testing.T, repositoryRoot string, options integrationCommandOptions, timeout time.Duration, arguments []string) string {
	testInstance.Helper()

	outputText, runError := executeIntegrationCommand(repositoryRoot, options, timeout, arguments)
	if runError != nil {
		testInstance.Fatalf("command failed: %v\n%s", runError, outputText)
	}
	return outputText
}

func runFailingIntegrationCommand(testInstance *testing.T, repositoryRoot string, options integrationCommandOptions, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()

	outputText, runError := executeIntegrationCommand(repositoryRoot, options, timeout, arguments)
	if runError == nil {
		testInstance.Fatalf("command succeeded unexpectedly:\n%s", outputText)
	}
	return outputText, runError
}

func executeIntegrationCommand(repositoryRoot string, options integrationCommandOptions, timeout time.Duration, arguments []string) (string, error) {
	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", arguments...)
	command.Dir = repositoryRoot

	environment := append([]string{}, os.Environ()...)
	if len(options.PathVariable) > 0 {
		environment = append(environment, "PATH="+options.PathVariable)
	}
	for overrideName, overrideValue := range options.EnvironmentOverrides {
		environment = append(environment, overrideName+"="+overrideValue)
	}
	command.Env = environment

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

// filterStructuredOutput drops zap JSON lines so assertions see only the
// human-facing command output.
func filterStructuredOutput(rawOutput string) string {
	var humanLines []string
	for _, line := range strings.Split(rawOutput, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, "{") {
			continue
		}
		humanLines = append(humanLines, line)
	}

	if len(humanLines) == 0 {
		return ""
	}
	return strings.Join(humanLines, "\n") + "\n"
}
