package controls_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	controlscmd "github.com/temirov/svnwc/cmd/cli/controls"
	"github.com/temirov/svnwc/internal/controls"
)

const (
	syncManifestFileNameConstant     = "controls.yaml"
	syncTrunkRepositoryURLConstant   = "https://svn.example.com/project/trunk"
	syncVendorRepositoryURLConstant  = "https://svn.example.com/project/vendor"
	syncManifestTemplateConstant     = "controls:\n  - name: trunk\n    type: checkout\n    repository_url: " + syncTrunkRepositoryURLConstant + "\n    target_path: %s\n  - name: vendor\n    type: export\n    repository_url: " + syncVendorRepositoryURLConstant + "\n    target_path: %s\n"
	syncManifestRequiredErrorMessage = "control manifest required; provide a manifest file argument or a controls section in the configuration"
	syncUsageSnippetConstant         = "Usage:"
)

func buildSyncCommand(testInstance *testing.T, client *scriptedWorkingCopyClient, configurationProvider func() controlscmd.CommandConfiguration) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	testInstance.Helper()

	builder := controlscmd.SyncCommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		Subversion:            client,
		ConfigurationProvider: configurationProvider,
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)
	command.SetContext(context.Background())
	return command, outputBuffer, errorBuffer
}

func writeSyncManifest(testInstance *testing.T, checkoutTarget string, exportTarget string) string {
	testInstance.Helper()

	manifestPath := filepath.Join(testInstance.TempDir(), syncManifestFileNameConstant)
	manifestContent := fmt.Sprintf(syncManifestTemplateConstant, checkoutTarget, exportTarget)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(manifestContent), 0o644))
	return manifestPath
}

func TestSyncCommandRunsManifestControlsInOrder(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()
	checkoutTarget := filepath.Join(workspaceDirectory, "trunk")
	exportTarget := filepath.Join(workspaceDirectory, "vendor")
	manifestPath := writeSyncManifest(testInstance, checkoutTarget, exportTarget)

	client := &scriptedWorkingCopyClient{createExportedTrees: true}
	command, outputBuffer, _ := buildSyncCommand(testInstance, client, nil)
	command.SetArgs([]string{manifestPath})

	require.NoError(testInstance, command.Execute())

	require.Equal(testInstance, []string{checkoutTarget}, client.checkoutTargets)
	require.Len(testInstance, client.exportTargets, 1)
	require.DirExists(testInstance, exportTarget)

	outputText := outputBuffer.String()
	require.Contains(testInstance, outputText, "trunk: checkout "+checkoutTarget)
	require.Contains(testInstance, outputText, "vendor: export "+exportTarget)
}

func TestSyncCommandSelectsNamedControls(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()
	checkoutTarget := filepath.Join(workspaceDirectory, "trunk")
	exportTarget := filepath.Join(workspaceDirectory, "vendor")
	manifestPath := writeSyncManifest(testInstance, checkoutTarget, exportTarget)

	client := &scriptedWorkingCopyClient{createExportedTrees: true}
	command, outputBuffer, _ := buildSyncCommand(testInstance, client, nil)
	command.SetArgs([]string{manifestPath, "--only", "vendor"})

	require.NoError(testInstance, command.Execute())

	require.Empty(testInstance, client.checkoutTargets)
	require.Len(testInstance, client.exportTargets, 1)
	require.NotContains(testInstance, outputBuffer.String(), "trunk:")
	require.Contains(testInstance, outputBuffer.String(), "vendor: export "+exportTarget)
}

func TestSyncCommandRejectsUnknownSelection(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()
	manifestPath := writeSyncManifest(testInstance, filepath.Join(workspaceDirectory, "trunk"), filepath.Join(workspaceDirectory, "vendor"))

	client := &scriptedWorkingCopyClient{}
	command, _, _ := buildSyncCommand(testInstance, client, nil)
	command.SetArgs([]string{manifestPath, "--only", "absent"})

	executionError := command.Execute()
	var unknownError controls.UnknownControlError
	require.ErrorAs(testInstance, executionError, &unknownError)
	require.Equal(testInstance, "absent", unknownError.ControlName)
	require.Empty(testInstance, client.checkoutTargets)
	require.Empty(testInstance, client.exportTargets)
}

func TestSyncCommandDryRunPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name           string
		configuration  controlscmd.CommandConfiguration
		additionalArgs []string
		expectPlanned  bool
	}{
		{
			name:           "configuration_applies_without_flags",
			configuration:  controlscmd.CommandConfiguration{DryRun: true},
			additionalArgs: []string{},
			expectPlanned:  true,
		},
		{
			name:           "flag_overrides_configuration",
			configuration:  controlscmd.CommandConfiguration{DryRun: false},
			additionalArgs: []string{"--dry-run"},
			expectPlanned:  true,
		},
		{
			name:           "flag_disables_configured_dry_run",
			configuration:  controlscmd.CommandConfiguration{DryRun: true},
			additionalArgs: []string{"--dry-run=no"},
			expectPlanned:  false,
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			workspaceDirectory := subtest.TempDir()
			checkoutTarget := filepath.Join(workspaceDirectory, "trunk")
			exportTarget := filepath.Join(workspaceDirectory, "vendor")
			manifestPath := writeSyncManifest(subtest, checkoutTarget, exportTarget)

			client := &scriptedWorkingCopyClient{createExportedTrees: true}
			command, outputBuffer, _ := buildSyncCommand(subtest, client, func() controlscmd.CommandConfiguration {
				return testCase.configuration
			})
			command.SetArgs(append([]string{manifestPath}, testCase.additionalArgs...))

			require.NoError(subtest, command.Execute())

			outputText := outputBuffer.String()
			if testCase.expectPlanned {
				require.Contains(subtest, outputText, "trunk: would checkout "+checkoutTarget)
				require.Contains(subtest, outputText, "vendor: would export "+exportTarget)
				require.Empty(subtest, client.checkoutTargets)
				require.Empty(subtest, client.exportTargets)
				return
			}

			require.Contains(subtest, outputText, "trunk: checkout "+checkoutTarget)
			require.Equal(subtest, []string{checkoutTarget}, client.checkoutTargets)
		})
	}
}

func TestSyncCommandUsesConfiguredControls(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()
	checkoutTarget := filepath.Join(workspaceDirectory, "trunk")

	client := &scriptedWorkingCopyClient{}
	command, outputBuffer, _ := buildSyncCommand(testInstance, client, func() controlscmd.CommandConfiguration {
		return controlscmd.CommandConfiguration{Controls: []controls.ManifestEntry{
			{Name: "trunk", Type: "checkout", RepositoryURL: syncTrunkRepositoryURLConstant, TargetPath: checkoutTarget},
		}}
	})
	command.SetArgs([]string{})

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []string{checkoutTarget}, client.checkoutTargets)
	require.Contains(testInstance, outputBuffer.String(), "trunk: checkout "+checkoutTarget)
}

func TestSyncCommandRequiresManifest(testInstance *testing.T) {
	client := &scriptedWorkingCopyClient{}
	command, outputBuffer, _ := buildSyncCommand(testInstance, client, nil)
	command.SetArgs([]string{})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), syncManifestRequiredErrorMessage)
	require.Contains(testInstance, outputBuffer.String(), syncUsageSnippetConstant)
	require.Empty(testInstance, client.checkoutTargets)
}

func TestSyncCommandContinuesPastControlFailures(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()
	failingTarget := filepath.Join(workspaceDirectory, "trunk")
	succeedingTarget := filepath.Join(workspaceDirectory, "vendor")
	require.NoError(testInstance, os.MkdirAll(failingTarget, 0o755))
	manifestPath := writeSyncManifest(testInstance, failingTarget, succeedingTarget)

	updateFailure := errors.New("svn: E155004: working copy locked")
	client := &scriptedWorkingCopyClient{
		workingCopyPaths:    map[string]bool{failingTarget: true},
		updateError:         updateFailure,
		createExportedTrees: true,
	}
	command, outputBuffer, errorBuffer := buildSyncCommand(testInstance, client, nil)
	command.SetArgs([]string{manifestPath})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.ErrorIs(testInstance, executionError, updateFailure)

	require.Equal(testInstance, []string{failingTarget}, client.updateTargets)
	require.Len(testInstance, client.exportTargets, 1)
	require.Contains(testInstance, errorBuffer.String(), "trunk: failed:")
	require.Contains(testInstance, outputBuffer.String(), "vendor: export "+succeedingTarget)
}
