package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	internalTestConfigurationFileName = "config.yaml"
	internalTestConfigurationContent  = "common:\n  log_level: debug\n  log_format: console\n"
)

func TestHumanReadableLoggingEnabled(t *testing.T) {
	testCases := []struct {
		name           string
		logFormat      string
		expectedResult bool
	}{
		{name: "ConsoleFormat", logFormat: "console", expectedResult: true},
		{name: "ConsoleFormatUppercase", logFormat: "CONSOLE", expectedResult: true},
		{name: "ConsoleFormatPadded", logFormat: "  console  ", expectedResult: true},
		{name: "StructuredFormat", logFormat: "structured", expectedResult: false},
		{name: "EmptyFormat", logFormat: "", expectedResult: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			application := &Application{}
			application.configuration.Common.LogFormat = testCase.logFormat
			require.Equal(t, testCase.expectedResult, application.humanReadableLoggingEnabled())
		})
	}
}

func TestInitializeConfigurationAppliesFlagOverrides(t *testing.T) {
	temporaryDirectory := t.TempDir()
	configurationPath := filepath.Join(temporaryDirectory, internalTestConfigurationFileName)
	require.NoError(t, os.WriteFile(configurationPath, []byte(internalTestConfigurationContent), 0o600))
	t.Setenv(configurationSearchPathVariableConstant, temporaryDirectory)

	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(t, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "error"))

	require.NoError(t, application.initializeConfiguration(rootCommand))

	require.Equal(t, "error", application.configuration.Common.LogLevel)
	require.Equal(t, "console", application.configuration.Common.LogFormat)
	require.True(t, application.humanReadableLoggingEnabled())

	contextConfigurationPath, contextPathAvailable := application.commandContextAccessor.ConfigurationFilePath(rootCommand.Context())
	require.True(t, contextPathAvailable)
	require.Equal(t, configurationPath, contextConfigurationPath)
}

func TestInitializeConfigurationDefaultsWithoutConfigurationFile(t *testing.T) {
	t.Setenv(configurationSearchPathVariableConstant, t.TempDir())

	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(t, application.initializeConfiguration(rootCommand))

	require.Equal(t, "info", application.configuration.Common.LogLevel)
	require.Equal(t, "structured", application.configuration.Common.LogFormat)
	require.False(t, application.humanReadableLoggingEnabled())
	require.Empty(t, application.configuration.Controls)
}

func TestVersionResolverAlwaysYieldsValue(t *testing.T) {
	resolvedVersion := resolveVersionFromBuildInfo(context.Background())
	require.NotEmpty(t, resolvedVersion)
}
