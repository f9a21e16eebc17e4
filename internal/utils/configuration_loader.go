package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configurationKeyPathSeparatorConstant        = "."
	environmentKeyWordSeparatorConstant          = "_"
	configurationReadFailureTemplateConstant     = "unable to read configuration file: %w"
	configurationDecodeFailureTemplateConstant   = "unable to decode configuration: %w"
	embeddedConfigurationFailureTemplateConstant = "unable to merge embedded configuration: %w"
)

// ConfigurationLoaderSettings describes how a ConfigurationLoader resolves configuration sources.
type ConfigurationLoaderSettings struct {
	// ConfigurationName is the file name (without extension) searched along SearchPaths.
	ConfigurationName string
	// ConfigurationType is the configuration format registered with Viper.
	ConfigurationType string
	// EnvironmentPrefix namespaces environment variable overrides.
	EnvironmentPrefix string
	// SearchPathVariable names an environment variable whose value, when set,
	// is searched before SearchPaths.
	SearchPathVariable string
	// SearchPaths lists directories inspected for the configuration file.
	SearchPaths []string
	// EmbeddedConfiguration holds baseline configuration merged before any
	// user-provided file. It shares ConfigurationType.
	EmbeddedConfiguration []byte
}

// ConfigurationLoader wraps Viper to load structured configuration files and environment overrides.
// Precedence from weakest to strongest: explicit defaults, embedded baseline,
// discovered or explicit configuration file, environment variables.
type ConfigurationLoader struct {
	settings ConfigurationLoaderSettings
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader honoring the provided settings.
func NewConfigurationLoader(settings ConfigurationLoaderSettings) *ConfigurationLoader {
	ownedSettings := settings
	ownedSettings.SearchPaths = make([]string, len(settings.SearchPaths))
	copy(ownedSettings.SearchPaths, settings.SearchPaths)
	ownedSettings.EmbeddedConfiguration = make([]byte, len(settings.EmbeddedConfiguration))
	copy(ownedSettings.EmbeddedConfiguration, settings.EmbeddedConfiguration)

	return &ConfigurationLoader{settings: ownedSettings}
}

// LoadConfiguration populates targetConfiguration from all configured sources and
// reports which configuration file, if any, was consulted.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType(loader.settings.ConfigurationType)

	if mergeError := loader.mergeEmbeddedBaseline(viperInstance); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}

	loader.configureEnvironmentOverrides(viperInstance)

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	loader.configureFileDiscovery(viperInstance, configurationFilePath)

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadFailureTemplateConstant, readError)
		}
	}

	if decodeError := viperInstance.Unmarshal(targetConfiguration); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeFailureTemplateConstant, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) mergeEmbeddedBaseline(viperInstance *viper.Viper) error {
	if len(loader.settings.EmbeddedConfiguration) == 0 {
		return nil
	}

	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.settings.EmbeddedConfiguration)); mergeError != nil {
		return fmt.Errorf(embeddedConfigurationFailureTemplateConstant, mergeError)
	}
	return nil
}

func (loader *ConfigurationLoader) configureEnvironmentOverrides(viperInstance *viper.Viper) {
	viperInstance.SetEnvPrefix(loader.settings.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeyPathSeparatorConstant, environmentKeyWordSeparatorConstant))
	viperInstance.AutomaticEnv()
}

// configureFileDiscovery points Viper at the explicit configuration file when one
// was supplied and otherwise registers the search directories.
func (loader *ConfigurationLoader) configureFileDiscovery(viperInstance *viper.Viper, explicitPath string) {
	if len(explicitPath) > 0 {
		viperInstance.SetConfigFile(explicitPath)
		return
	}

	viperInstance.SetConfigName(loader.settings.ConfigurationName)
	for _, searchPath := range loader.searchPaths() {
		viperInstance.AddConfigPath(searchPath)
	}
}

// searchPaths prepends the directory named by SearchPathVariable, when set, to
// the configured search directories.
func (loader *ConfigurationLoader) searchPaths() []string {
	overridePath := strings.TrimSpace(os.Getenv(loader.settings.SearchPathVariable))
	if len(overridePath) == 0 {
		return loader.settings.SearchPaths
	}
	return append([]string{overridePath}, loader.settings.SearchPaths...)
}
