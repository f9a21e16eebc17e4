package controls

import "github.com/temirov/svnwc/internal/controls"

// CommandConfiguration captures configuration values shared by control commands.
type CommandConfiguration struct {
	DryRun   bool                     `mapstructure:"dry_run"`
	Controls []controls.ManifestEntry `mapstructure:"controls"`
}

// DefaultCommandConfiguration provides default control command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// Sanitize normalizes configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Controls = append([]controls.ManifestEntry{}, configuration.Controls...)
	return sanitized
}
