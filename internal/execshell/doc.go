// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions svnwc uses to run
// the Subversion command-line client in a testable manner.
package execshell
