package controls

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/svnwc/internal/controls"
	"github.com/temirov/svnwc/internal/controls/dependencies"
	"github.com/temirov/svnwc/internal/controls/shared"
	"github.com/temirov/svnwc/internal/execshell"
	"github.com/temirov/svnwc/internal/ui"
	"github.com/temirov/svnwc/internal/utils"
	flagutils "github.com/temirov/svnwc/internal/utils/flags"
	pathutils "github.com/temirov/svnwc/internal/utils/path"
)

const (
	syncCommandUseConstant              = "sync [manifest]"
	syncCommandShortDescriptionConstant = "Run every control defined by a manifest"
	syncCommandLongDescriptionConstant  = "sync runs the controls defined in a YAML or JSON manifest in document order, checking out, updating, or exporting each target path with the svn command line client."
	onlyFlagNameConstant                = "only"
	onlyFlagDescriptionConstant         = "Run only the named controls (repeatable)"
	dryRunFlagNameConstant              = "dry-run"
	dryRunFlagDescriptionConstant       = "Report planned actions without invoking svn"
	syncOutcomeLineTemplateConstant     = "%s: %s %s\n"
	syncPlannedLineTemplateConstant     = "%s: would %s %s\n"
	syncFailureLineTemplateConstant     = "%s: failed: %v\n"
)

// SyncCommandBuilder assembles the sync command.
type SyncCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Subversion                   shared.WorkingCopyClient
	SubversionExecutor           shared.SubversionExecutor
	FileSystem                   shared.FileSystem
	Replicator                   shared.TreeReplicator
	ReadOnlyMarker               shared.ReadOnlyMarker
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration

	dryRunFlagValue bool
}

// Build constructs the sync command.
func (builder *SyncCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   syncCommandUseConstant,
		Short: syncCommandShortDescriptionConstant,
		Long:  syncCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().StringSlice(onlyFlagNameConstant, nil, onlyFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.dryRunFlagValue, dryRunFlagNameConstant, "", false, dryRunFlagDescriptionConstant)

	return command, nil
}

func (builder *SyncCommandBuilder) run(command *cobra.Command, arguments []string) error {
	commandConfiguration := builder.resolveConfiguration()

	manifest, manifestError := resolveManifest(command, arguments, commandConfiguration)
	if manifestError != nil {
		return manifestError
	}

	logger := resolveLogger(builder.LoggerProvider)
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	var commandEventObserver execshell.CommandEventObserver
	if humanReadableLogging {
		commandEventObserver = ui.NewConsoleCommandEventLogger(logger)
	}
	subversionExecutor, executorError := dependencies.ResolveSubversionExecutor(builder.SubversionExecutor, logger, commandEventObserver)
	if executorError != nil {
		return executorError
	}
	workingCopyClient, clientError := dependencies.ResolveWorkingCopyClient(builder.Subversion, subversionExecutor)
	if clientError != nil {
		return clientError
	}

	dryRun := commandConfiguration.DryRun
	if command != nil && command.Flags().Changed(dryRunFlagNameConstant) {
		dryRun = builder.dryRunFlagValue
	}

	manager, buildError := controls.BuildManager(command.Context(), manifest, controls.BuilderDependencies{
		Subversion:     workingCopyClient,
		FileSystem:     builder.FileSystem,
		Replicator:     builder.Replicator,
		ReadOnlyMarker: builder.ReadOnlyMarker,
		PathExpander:   pathutils.NewHomeExpander(),
		Logger:         logger,
	}, controls.BuildOptions{DryRun: dryRun})
	if buildError != nil {
		return buildError
	}

	selectedControlNames, _ := command.Flags().GetStringSlice(onlyFlagNameConstant)

	var summary controls.RunSummary
	var runError error
	if len(selectedControlNames) > 0 {
		summary, runError = manager.RunNamed(command.Context(), selectedControlNames)
	} else {
		summary, runError = manager.RunAll(command.Context())
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	errorWriter := utils.NewFlushingWriter(command.ErrOrStderr())
	for _, outcome := range summary.Outcomes {
		lineTemplate := syncOutcomeLineTemplateConstant
		if outcome.DryRun {
			lineTemplate = syncPlannedLineTemplateConstant
		}
		fmt.Fprintf(outputWriter, lineTemplate, outcome.ControlName, outcome.Action, outcome.TargetPath)
	}
	for _, failure := range summary.Failures {
		fmt.Fprintf(errorWriter, syncFailureLineTemplateConstant, failure.ControlName, failure.Cause)
	}

	return runError
}

func (builder *SyncCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}
