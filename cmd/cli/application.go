package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	controlscmd "github.com/temirov/svnwc/cmd/cli/controls"
	"github.com/temirov/svnwc/internal/controls"
	"github.com/temirov/svnwc/internal/utils"
	flagutils "github.com/temirov/svnwc/internal/utils/flags"
)

const (
	applicationNameConstant             = "svnwc"
	applicationShortDescriptionConstant = "Command-line interface for Subversion working copy controls"
	applicationLongDescriptionConstant  = "svnwc keeps Subversion checkouts and exports synchronized with a declarative list of controls, shelling out to the svn command line client."
	versionFlagArgumentConstant         = "--version"
	versionOutputTemplateConstant       = applicationNameConstant + " version: %s\n"
	developmentVersionConstant          = "development"
)

const (
	configurationFlagNameConstant    = "config"
	configurationFlagUsageConstant   = "Path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant         = "log-level"
	logLevelFlagDescriptionConstant  = "Override the configured log level."
	logFormatFlagNameConstant        = "log-format"
	logFormatFlagDescriptionConstant = "Override the configured log format."
)

const (
	configurationBaseNameConstant           = "config"
	configurationFileTypeConstant           = "yaml"
	configurationSearchPathVariableConstant = "SVNWC_CONFIG_SEARCH_PATH"
	environmentPrefixConstant               = "SVNWC"
	commonSectionConfigurationKeyConstant   = "common"
	logLevelConfigurationKeyConstant        = commonSectionConfigurationKeyConstant + ".log_level"
	logFormatConfigurationKeyConstant       = commonSectionConfigurationKeyConstant + ".log_format"
	workingDirectorySearchPathConstant      = "."
	userConfigurationDirectoryNameConstant  = "svnwc"
)

const (
	configurationReadyLogMessageConstant     = "configuration initialized"
	configurationFieldLogLevelConstant       = "log_level"
	configurationFieldLogFormatConstant      = "log_format"
	configurationFieldSourceConstant         = "config_file"
	rootCommandInfoMessageConstant           = "svnwc CLI executed"
	rootCommandDebugMessageConstant          = "svnwc CLI diagnostics"
	rootCommandFieldNameConstant             = "command_name"
	rootCommandFieldArgumentCountConstant    = "argument_count"
	rootCommandFieldArgumentsConstant        = "arguments"
	configurationLoadFailureTemplateConstant = "unable to load configuration: %w"
	loggerCreationFailureTemplateConstant    = "unable to create logger: %w"
	loggerFlushFailureTemplateConstant       = "unable to flush logger: %w"
	loggerMissingMessageConstant             = "logger not initialized"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Controls []controls.ManifestEntry       `mapstructure:"controls"`
}

// ApplicationCommonConfiguration stores settings shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	DryRun    bool   `mapstructure:"dry_run"`
}

// Application owns the root command tree and the configuration and logging
// state behind it.
type Application struct {
	rootCommand *cobra.Command

	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	commandContextAccessor utils.CommandContextAccessor
	versionResolver        func(context.Context) string
	exitFunction           func(int)

	logger                *zap.Logger
	configuration         ApplicationConfiguration
	loadedConfiguration   utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagOverride  string
	logFormatFlagOverride string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		configurationLoader:    newConfigurationLoader(),
		loggerFactory:          utils.NewLoggerFactory(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		versionResolver:        resolveVersionFromBuildInfo,
		exitFunction:           os.Exit,
		logger:                 zap.NewNop(),
	}
	application.rootCommand = application.buildRootCommand()
	return application
}

func newConfigurationLoader() *utils.ConfigurationLoader {
	embeddedConfiguration, _ := EmbeddedDefaultConfiguration()
	return utils.NewConfigurationLoader(utils.ConfigurationLoaderSettings{
		ConfigurationName:     configurationBaseNameConstant,
		ConfigurationType:     configurationFileTypeConstant,
		EnvironmentPrefix:     environmentPrefixConstant,
		SearchPathVariable:    configurationSearchPathVariableConstant,
		SearchPaths:           configurationSearchPaths(),
		EmbeddedConfiguration: embeddedConfiguration,
	})
}

func (application *Application) buildRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}
	rootCommand.SetContext(context.Background())

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configurationFlagNameConstant, "", configurationFlagUsageConstant)
	persistentFlags.StringVar(
		&application.logLevelFlagOverride,
		logLevelFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), utils.SupportedLogLevelNames(), logLevelFlagDescriptionConstant),
	)
	persistentFlags.StringVar(
		&application.logFormatFlagOverride,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), utils.SupportedLogFormatNames(), logFormatFlagDescriptionConstant),
	)

	application.attachControlCommands(rootCommand)
	return rootCommand
}

func (application *Application) attachControlCommands(rootCommand *cobra.Command) {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	commandBuilders := []interface {
		Build() (*cobra.Command, error)
	}{
		&controlscmd.SyncCommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider:        application.controlCommandConfiguration,
		},
		&controlscmd.ListCommandBuilder{
			LoggerProvider:        loggerProvider,
			ConfigurationProvider: application.controlCommandConfiguration,
		},
		&controlscmd.LatestCommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		},
	}

	for _, commandBuilder := range commandBuilders {
		builtCommand, buildError := commandBuilder.Build()
		if buildError != nil {
			continue
		}
		rootCommand.AddCommand(builtCommand)
	}
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	commandArguments := os.Args[1:]
	if containsVersionFlag(commandArguments) {
		fmt.Printf(versionOutputTemplateConstant, application.versionResolver(application.rootCommand.Context()))
		application.exitFunction(0)
		return nil
	}

	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(commandArguments))

	executionError := application.rootCommand.Execute()
	if flushError := application.flushLogger(); flushError != nil {
		return fmt.Errorf(loggerFlushFailureTemplateConstant, flushError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func containsVersionFlag(arguments []string) bool {
	for _, argument := range arguments {
		if argument == versionFlagArgumentConstant {
			return true
		}
	}
	return false
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	configurationDefaults := map[string]any{
		logLevelConfigurationKeyConstant:  string(utils.LogLevelInfo),
		logFormatConfigurationKeyConstant: string(utils.LogFormatStructured),
	}

	loadResult, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, configurationDefaults, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadFailureTemplateConstant, loadError)
	}
	application.loadedConfiguration = loadResult

	application.applyPersistentFlagOverrides(command)

	createdLogger, loggerError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerError != nil {
		return fmt.Errorf(loggerCreationFailureTemplateConstant, loggerError)
	}
	application.logger = createdLogger

	application.logger.Info(
		configurationReadyLogMessageConstant,
		zap.String(configurationFieldLogLevelConstant, application.configuration.Common.LogLevel),
		zap.String(configurationFieldLogFormatConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFieldSourceConstant, application.loadedConfiguration.ConfigFileUsed),
	)

	application.storeConfigurationPathInContext(command)
	return nil
}

func (application *Application) applyPersistentFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagOverride
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagOverride
	}
}

// storeConfigurationPathInContext records the resolved configuration file on the
// command context so subcommands can mention it in their error messages.
func (application *Application) storeConfigurationPathInContext(command *cobra.Command) {
	if command == nil {
		return
	}

	updatedContext := application.commandContextAccessor.WithConfigurationFilePath(command.Context(), application.loadedConfiguration.ConfigFileUsed)
	command.SetContext(updatedContext)
	if rootCommand := command.Root(); rootCommand != nil {
		rootCommand.SetContext(updatedContext)
	}
}

func (application *Application) controlCommandConfiguration() controlscmd.CommandConfiguration {
	return controlscmd.CommandConfiguration{
		DryRun:   application.configuration.Common.DryRun,
		Controls: application.configuration.Controls,
	}
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerMissingMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(rootCommandFieldNameConstant, command.Name()),
		zap.Int(rootCommandFieldArgumentCountConstant, len(arguments)),
	)
	application.logger.Debug(rootCommandDebugMessageConstant, zap.Strings(rootCommandFieldArgumentsConstant, arguments))

	if len(arguments) > 0 {
		return nil
	}
	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	if syncError == nil || errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL) {
		return nil
	}
	return syncError
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	candidateFlagSets := []*pflag.FlagSet{command.PersistentFlags(), command.InheritedFlags()}
	if rootCommand := command.Root(); rootCommand != nil {
		candidateFlagSets = append(candidateFlagSets, rootCommand.PersistentFlags())
	}

	for _, candidateFlagSet := range candidateFlagSets {
		if candidateFlagSet != nil && candidateFlagSet.Changed(flagName) {
			return true
		}
	}
	return false
}

func configurationSearchPaths() []string {
	searchPaths := []string{workingDirectorySearchPathConstant}
	if userConfigurationDirectory, lookupError := os.UserConfigDir(); lookupError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant))
	}
	return searchPaths
}

func resolveVersionFromBuildInfo(context.Context) string {
	buildInformation, buildInformationAvailable := debug.ReadBuildInfo()
	if !buildInformationAvailable {
		return developmentVersionConstant
	}

	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == "(devel)" {
		return developmentVersionConstant
	}
	return moduleVersion
}
