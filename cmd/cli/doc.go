// Package cli constructs the svnwc command-line interface: the cobra command
// hierarchy plus the configuration and logging plumbing behind it. Execute
// builds a fully wired application and runs the default command set.
package cli
