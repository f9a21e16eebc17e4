package utils

import "context"

// configurationPathContextKey is the private context key under which the
// root command stores the selected configuration file path.
type configurationPathContextKey struct{}

// CommandContextAccessor reads and writes the values the CLI threads through
// command contexts between the root command and its subcommands.
type CommandContextAccessor struct{}

// NewCommandContextAccessor returns an accessor for command context values.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath stores the configuration file path in the context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationPathContextKey{}, configurationFilePath)
}

// ConfigurationFilePath reports the configuration file path stored in the
// context, if any.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedPath, pathPresent := executionContext.Value(configurationPathContextKey{}).(string)
	return storedPath, pathPresent
}
