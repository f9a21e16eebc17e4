package controls

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/svnwc/internal/controls/dependencies"
	"github.com/temirov/svnwc/internal/controls/shared"
	"github.com/temirov/svnwc/internal/execshell"
	"github.com/temirov/svnwc/internal/ui"
	"github.com/temirov/svnwc/internal/utils"
)

const (
	latestCommandUseConstant              = "latest parent-url"
	latestCommandShortDescriptionConstant = "Resolve the newest child of a parent URL"
	latestCommandLongDescriptionConstant  = "latest lists the immediate children of a Subversion parent URL and prints the lexicographically newest one."
	parentURLRequiredMessageConstant      = "parent URL required"
)

// LatestCommandBuilder assembles the latest command.
type LatestCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Subversion                   shared.WorkingCopyClient
	SubversionExecutor           shared.SubversionExecutor
	HumanReadableLoggingProvider func() bool
}

// Build constructs the latest command.
func (builder *LatestCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   latestCommandUseConstant,
		Short: latestCommandShortDescriptionConstant,
		Long:  latestCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *LatestCommandBuilder) run(command *cobra.Command, arguments []string) error {
	parentURL := strings.TrimSpace(arguments[0])
	if len(parentURL) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(parentURLRequiredMessageConstant)
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

	resolvedURL, resolutionError := workingCopyClient.ResolveLatestChild(command.Context(), parentURL)
	if resolutionError != nil {
		return resolutionError
	}

	fmt.Fprintln(utils.NewFlushingWriter(command.OutOrStdout()), resolvedURL)
	return nil
}
