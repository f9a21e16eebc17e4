package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/svnwc/internal/execshell"
)

type scriptedCommandRunner struct {
	result   execshell.ExecutionResult
	err      error
	commands []execshell.ShellCommand
}

func (runner *scriptedCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.commands = append(runner.commands, command)
	return runner.result, runner.err
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedCommands []execshell.ShellCommand
	failedCommands    []execshell.ShellCommand
}

func (observer *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observer.startedCommands = append(observer.startedCommands, command)
}

func (observer *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, _ execshell.ExecutionResult) {
	observer.completedCommands = append(observer.completedCommands, command)
}

func (observer *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, _ error) {
	observer.failedCommands = append(observer.failedCommands, command)
}

func TestNewShellExecutorValidatesDependencies(testInstance *testing.T) {
	_, missingLoggerError := execshell.NewShellExecutor(nil, &scriptedCommandRunner{})
	require.ErrorIs(testInstance, missingLoggerError, execshell.ErrLoggerNotConfigured)

	_, missingRunnerError := execshell.NewShellExecutor(zap.NewNop(), nil)
	require.ErrorIs(testInstance, missingRunnerError, execshell.ErrCommandRunnerNotConfigured)

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &scriptedCommandRunner{})
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, executor)
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectedError    any
		expectedMessages []string
		expectedLevels   []zapcore.Level
	}{
		{
			name:             "ZeroExitReturnsResult",
			runnerResult:     execshell.ExecutionResult{StandardOutput: "ok"},
			expectedMessages: []string{"executing command", "command completed"},
			expectedLevels:   []zapcore.Level{zapcore.InfoLevel, zapcore.InfoLevel},
		},
		{
			name:             "NonZeroExitBecomesCommandFailedError",
			runnerResult:     execshell.ExecutionResult{StandardError: "svn: E155007: none of the targets are working copies", ExitCode: 1},
			expectedError:    execshell.CommandFailedError{},
			expectedMessages: []string{"executing command", "command completed"},
			expectedLevels:   []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel},
		},
		{
			name:             "RunnerErrorBecomesCommandExecutionError",
			runnerError:      errors.New("executable file not found"),
			expectedError:    execshell.CommandExecutionError{},
			expectedMessages: []string{"executing command", "command execution failed"},
			expectedLevels:   []zapcore.Level{zapcore.InfoLevel, zapcore.ErrorLevel},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observedCore, observedLogs := observer.New(zap.DebugLevel)
			commandRunner := &scriptedCommandRunner{result: testCase.runnerResult, err: testCase.runnerError}

			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observedCore), commandRunner)
			require.NoError(testInstance, creationError)

			executionResult, executionError := shellExecutor.ExecuteSubversion(
				context.Background(),
				execshell.CommandDetails{Arguments: []string{"info", "--show-item", "url"}},
			)

			if testCase.expectedError != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectedError, executionError)
				require.Empty(testInstance, executionResult)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult, executionResult)
			}

			loggedEntries := observedLogs.All()
			require.Len(testInstance, loggedEntries, len(testCase.expectedMessages))
			for entryIndex, loggedEntry := range loggedEntries {
				require.Equal(testInstance, testCase.expectedMessages[entryIndex], loggedEntry.Message)
				require.Equal(testInstance, testCase.expectedLevels[entryIndex], loggedEntry.Level)
			}
		})
	}
}

func TestShellExecutorSubversionWrapperSetsCommandName(testInstance *testing.T) {
	commandRunner := &scriptedCommandRunner{}

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), commandRunner)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteSubversion(context.Background(), execshell.CommandDetails{Arguments: []string{"--version"}})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, commandRunner.commands, 1)
	require.Equal(testInstance, execshell.CommandSubversion, commandRunner.commands[0].Name)
}

func TestShellExecutorNotifiesEventObserver(testInstance *testing.T) {
	testCases := []struct {
		name                string
		runnerResult        execshell.ExecutionResult
		runnerError         error
		expectedStartCount  int
		expectedDoneCount   int
		expectedFailedCount int
	}{
		{
			name:               "ZeroExit",
			runnerResult:       execshell.ExecutionResult{ExitCode: 0},
			expectedStartCount: 1,
			expectedDoneCount:  1,
		},
		{
			name:               "NonZeroExit",
			runnerResult:       execshell.ExecutionResult{ExitCode: 1},
			expectedStartCount: 1,
			expectedDoneCount:  1,
		},
		{
			name:                "RunnerError",
			runnerError:         errors.New("runner failure"),
			expectedStartCount:  1,
			expectedFailedCount: 1,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			commandRunner := &scriptedCommandRunner{result: testCase.runnerResult, err: testCase.runnerError}
			eventObserver := &recordingEventObserver{}

			executor, creationError := execshell.NewShellExecutorWithObserver(zap.NewNop(), commandRunner, eventObserver)
			require.NoError(testInstance, creationError)

			_, _ = executor.ExecuteSubversion(context.Background(), execshell.CommandDetails{})

			require.Len(testInstance, eventObserver.startedCommands, testCase.expectedStartCount)
			require.Len(testInstance, eventObserver.completedCommands, testCase.expectedDoneCount)
			require.Len(testInstance, eventObserver.failedCommands, testCase.expectedFailedCount)
		})
	}
}
