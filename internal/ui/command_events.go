package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/svnwc/internal/execshell"
)

// ConsoleCommandEventLogger renders command lifecycle events as concise
// human-readable log lines. Messages come from the execshell formatter, so
// Subversion subcommands are described in domain terms such as
// "Checking out URL into PATH" rather than raw argument vectors.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger returns an event logger writing through the
// supplied zap logger. A nil logger silences the output.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted announces the command before it runs.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted reports the outcome, warning when the exit code was non-zero.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}

	completionMessage := eventLogger.formatter.BuildCompletedMessage(command, result)
	if result.ExitCode == 0 {
		eventLogger.logger.Info(completionMessage)
		return
	}
	eventLogger.logger.Warn(completionMessage)
}

// CommandExecutionFailed reports a command that never produced an exit code.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
