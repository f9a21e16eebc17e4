package controls

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/temirov/svnwc/internal/controls"
	"github.com/temirov/svnwc/internal/utils"
)

const (
	listCommandUseConstant              = "controls [manifest]"
	listCommandShortDescriptionConstant = "List the controls a manifest defines"
	listCommandLongDescriptionConstant  = "controls renders the manifest entries as a table without running any of them."
	nameColumnHeaderConstant            = "NAME"
	typeColumnHeaderConstant            = "TYPE"
	sourceColumnHeaderConstant          = "SOURCE"
	targetColumnHeaderConstant          = "TARGET"
	optionsColumnHeaderConstant         = "OPTIONS"
	latestChildSourceSuffixConstant     = " (latest)"
	forceOverwriteOptionNameConstant    = "force-overwrite"
	readOnlyOptionNameConstant          = "read-only"
	optionSeparatorConstant             = ","
	noOptionsPlaceholderConstant        = "-"
)

// ListCommandBuilder assembles the controls listing command.
type ListCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the controls listing command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Long:  listCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	commandConfiguration := builder.resolveConfiguration()

	manifest, manifestError := resolveManifest(command, arguments, commandConfiguration)
	if manifestError != nil {
		return manifestError
	}

	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(utils.NewFlushingWriter(command.OutOrStdout()))
	tableWriter.AppendHeader(table.Row{
		nameColumnHeaderConstant,
		typeColumnHeaderConstant,
		sourceColumnHeaderConstant,
		targetColumnHeaderConstant,
		optionsColumnHeaderConstant,
	})
	for _, entry := range manifest.Controls {
		controlType, _ := entry.ControlType()
		tableWriter.AppendRow(table.Row{
			strings.TrimSpace(entry.Name),
			string(controlType),
			describeEntrySource(entry),
			strings.TrimSpace(entry.TargetPath),
			describeEntryOptions(entry),
		})
	}
	tableWriter.Render()

	return nil
}

func (builder *ListCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}

func describeEntrySource(entry controls.ManifestEntry) string {
	trimmedRepositoryURL := strings.TrimSpace(entry.RepositoryURL)
	if len(trimmedRepositoryURL) > 0 {
		return trimmedRepositoryURL
	}
	return strings.TrimSpace(entry.ParentURL) + latestChildSourceSuffixConstant
}

func describeEntryOptions(entry controls.ManifestEntry) string {
	optionNames := make([]string, 0, 2)
	if entry.ForceOverwrite {
		optionNames = append(optionNames, forceOverwriteOptionNameConstant)
	}
	if entry.ReadOnly {
		optionNames = append(optionNames, readOnlyOptionNameConstant)
	}
	if len(optionNames) == 0 {
		return noOptionsPlaceholderConstant
	}
	return strings.Join(optionNames, optionSeparatorConstant)
}
