package execshell

// CommandEventObserver receives lifecycle notifications for Subversion
// command execution. The executor invokes observers synchronously, so
// implementations should return quickly.
type CommandEventObserver interface {
	// CommandStarted fires immediately before the command launches.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the command ran and produced a result,
	// regardless of its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the command could not run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver drops every event. It stands in when no observer
// was configured so the executor never has to check for nil.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand)                    {}
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error)     {}
