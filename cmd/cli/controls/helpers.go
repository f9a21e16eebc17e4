package controls

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/svnwc/internal/controls"
	"github.com/temirov/svnwc/internal/utils"
)

const (
	manifestRequiredMessageConstant             = "control manifest required; provide a manifest file argument or a controls section in the configuration"
	manifestMissingInConfigurationTemplateConst = "control manifest required; %s does not define a controls section"
	loadManifestErrorTemplateConstant           = "unable to load control manifest: %w"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}

// resolveManifest selects the control manifest for a command invocation: a
// positional manifest path wins, then the controls carried by the application
// configuration. When neither is present the command help is shown and the
// returned error names the configuration file recorded in context, if any.
func resolveManifest(command *cobra.Command, arguments []string, configuration CommandConfiguration) (controls.Manifest, error) {
	manifestPathCandidate := ""
	if len(arguments) > 0 {
		manifestPathCandidate = strings.TrimSpace(arguments[0])
	}

	if len(manifestPathCandidate) > 0 {
		manifest, manifestError := controls.LoadManifest(manifestPathCandidate)
		if manifestError != nil {
			return controls.Manifest{}, fmt.Errorf(loadManifestErrorTemplateConstant, manifestError)
		}
		return manifest, nil
	}

	if len(configuration.Controls) > 0 {
		manifest := controls.Manifest{Controls: append([]controls.ManifestEntry{}, configuration.Controls...)}
		if validationError := manifest.Validate(); validationError != nil {
			return controls.Manifest{}, fmt.Errorf(loadManifestErrorTemplateConstant, validationError)
		}
		return manifest, nil
	}

	if helpError := displayCommandHelp(command); helpError != nil {
		return controls.Manifest{}, helpError
	}

	contextAccessor := utils.NewCommandContextAccessor()
	configurationFilePath, configurationFilePathAvailable := contextAccessor.ConfigurationFilePath(command.Context())
	if configurationFilePathAvailable && len(strings.TrimSpace(configurationFilePath)) > 0 {
		return controls.Manifest{}, fmt.Errorf(manifestMissingInConfigurationTemplateConst, strings.TrimSpace(configurationFilePath))
	}
	return controls.Manifest{}, errors.New(manifestRequiredMessageConstant)
}
