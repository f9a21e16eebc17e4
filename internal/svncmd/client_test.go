package svncmd_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/svnwc/internal/execshell"
	"github.com/temirov/svnwc/internal/svncmd"
)

const (
	testRepositoryURLConstant                  = "https://svn.example.com/project/trunk"
	testParentURLConstant                      = "https://svn.example.com/project/tags"
	testTargetPathConstant                     = "/workspace/project"
	testCheckoutSuccessCaseNameConstant        = "checkout_success"
	testCheckoutURLValidationCaseNameConstant  = "checkout_url_validation"
	testCheckoutPathValidationCaseNameConstant = "checkout_path_validation"
	testCheckoutCommandFailureCaseNameConstant = "checkout_command_failure"
	testExportPlainCaseNameConstant            = "export_without_force"
	testExportForceCaseNameConstant            = "export_with_force"
	testListingOrderCaseNameConstant           = "listing_preserves_order"
	testListingBlankLinesCaseNameConstant      = "listing_drops_blank_lines"
	testLatestTrailingSlashCaseNameConstant    = "latest_trims_trailing_slash"
	testLatestSortsEntriesCaseNameConstant     = "latest_sorts_entries"
	testLatestParentSlashCaseNameConstant      = "latest_tolerates_parent_slash"
	testLatestEmptyParentCaseNameConstant      = "latest_empty_parent"
)

type stubSubversionExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubSubversionExecutor) ExecuteSubversion(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run("nil_executor", func(testInstance *testing.T) {
		client, creationError := svncmd.NewClient(nil)
		require.Error(testInstance, creationError)
		require.ErrorIs(testInstance, creationError, svncmd.ErrExecutorNotConfigured)
		require.Nil(testInstance, client)
	})
}

func TestCheckout(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       svncmd.CheckoutOptions
		executor      *stubSubversionExecutor
		expectError   bool
		errorType     any
		expectedFlags []string
	}{
		{
			name:          testCheckoutSuccessCaseNameConstant,
			options:       svncmd.CheckoutOptions{RepositoryURL: testRepositoryURLConstant, TargetPath: testTargetPathConstant},
			executor:      &stubSubversionExecutor{},
			expectedFlags: []string{"checkout", "--non-interactive", testRepositoryURLConstant, testTargetPathConstant},
		},
		{
			name:        testCheckoutURLValidationCaseNameConstant,
			options:     svncmd.CheckoutOptions{RepositoryURL: "  ", TargetPath: testTargetPathConstant},
			executor:    &stubSubversionExecutor{},
			expectError: true,
			errorType:   svncmd.InvalidInputError{},
		},
		{
			name:        testCheckoutPathValidationCaseNameConstant,
			options:     svncmd.CheckoutOptions{RepositoryURL: testRepositoryURLConstant, TargetPath: ""},
			executor:    &stubSubversionExecutor{},
			expectError: true,
			errorType:   svncmd.InvalidInputError{},
		},
		{
			name:    testCheckoutCommandFailureCaseNameConstant,
			options: svncmd.CheckoutOptions{RepositoryURL: testRepositoryURLConstant, TargetPath: testTargetPathConstant},
			executor: &stubSubversionExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: execshell.ShellCommand{Name: execshell.CommandSubversion}, Result: execshell.ExecutionResult{ExitCode: 1}}
			}},
			expectError: true,
			errorType:   svncmd.OperationError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := svncmd.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			_, checkoutError := client.Checkout(context.Background(), testCase.options)
			if testCase.expectError {
				require.Error(testInstance, checkoutError)
				require.IsType(testInstance, testCase.errorType, checkoutError)
				return
			}
			require.NoError(testInstance, checkoutError)
			require.Len(testInstance, testCase.executor.recordedDetails, 1)
			require.Equal(testInstance, testCase.expectedFlags, testCase.executor.recordedDetails[0].Arguments)
		})
	}
}

func TestUpdateBuildsExpectedArguments(testInstance *testing.T) {
	executor := &stubSubversionExecutor{}
	client, creationError := svncmd.NewClient(executor)
	require.NoError(testInstance, creationError)

	_, updateError := client.Update(context.Background(), svncmd.UpdateOptions{WorkingCopyPath: testTargetPathConstant})
	require.NoError(testInstance, updateError)
	require.Len(testInstance, executor.recordedDetails, 1)
	require.Equal(testInstance, []string{"update", "--non-interactive", testTargetPathConstant}, executor.recordedDetails[0].Arguments)
}

func TestExportForceFlagHandling(testInstance *testing.T) {
	testCases := []struct {
		name              string
		force             bool
		expectedArguments []string
	}{
		{
			name:              testExportPlainCaseNameConstant,
			force:             false,
			expectedArguments: []string{"export", "--non-interactive", testRepositoryURLConstant, testTargetPathConstant},
		},
		{
			name:              testExportForceCaseNameConstant,
			force:             true,
			expectedArguments: []string{"export", "--non-interactive", "--force", testRepositoryURLConstant, testTargetPathConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubSubversionExecutor{}
			client, creationError := svncmd.NewClient(executor)
			require.NoError(testInstance, creationError)

			_, exportError := client.Export(context.Background(), svncmd.ExportOptions{
				RepositoryURL: testRepositoryURLConstant,
				TargetPath:    testTargetPathConstant,
				Force:         testCase.force,
			})
			require.NoError(testInstance, exportError)
			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestListEntriesParsesListingOutput(testInstance *testing.T) {
	testCases := []struct {
		name            string
		standardOutput  string
		expectedEntries []string
	}{
		{
			name:            testListingOrderCaseNameConstant,
			standardOutput:  "branches/\ntags/\ntrunk/\n",
			expectedEntries: []string{"branches/", "tags/", "trunk/"},
		},
		{
			name:            testListingBlankLinesCaseNameConstant,
			standardOutput:  "\n1.0.0/\n\n  \n1.1.0/\n",
			expectedEntries: []string{"1.0.0/", "1.1.0/"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubSubversionExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: testCase.standardOutput}, nil
			}}
			client, creationError := svncmd.NewClient(executor)
			require.NoError(testInstance, creationError)

			entries, listError := client.ListEntries(context.Background(), testParentURLConstant)
			require.NoError(testInstance, listError)
			require.Equal(testInstance, testCase.expectedEntries, entries)
			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, []string{"list", "--non-interactive", testParentURLConstant}, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestResolveLatestChild(testInstance *testing.T) {
	testCases := []struct {
		name           string
		parentURL      string
		standardOutput string
		expectedURL    string
		expectError    bool
		errorType      any
	}{
		{
			name:           testLatestTrailingSlashCaseNameConstant,
			parentURL:      testParentURLConstant,
			standardOutput: "1.0.0/\n1.1.0/\n",
			expectedURL:    testParentURLConstant + "/1.1.0",
		},
		{
			name:           testLatestSortsEntriesCaseNameConstant,
			parentURL:      testParentURLConstant,
			standardOutput: "1.1.0/\n1.0.0/\n0.9.0/\n",
			expectedURL:    testParentURLConstant + "/1.1.0",
		},
		{
			name:           testLatestParentSlashCaseNameConstant,
			parentURL:      testParentURLConstant + "/",
			standardOutput: "1.0.0/\n",
			expectedURL:    testParentURLConstant + "/1.0.0",
		},
		{
			name:           testLatestEmptyParentCaseNameConstant,
			parentURL:      testParentURLConstant,
			standardOutput: "\n",
			expectError:    true,
			errorType:      svncmd.EmptyParentDirectoryError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubSubversionExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: testCase.standardOutput}, nil
			}}
			client, creationError := svncmd.NewClient(executor)
			require.NoError(testInstance, creationError)

			latestURL, resolveError := client.ResolveLatestChild(context.Background(), testCase.parentURL)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				require.IsType(testInstance, testCase.errorType, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedURL, latestURL)
		})
	}
}

func TestIsWorkingCopyDetectsMetadataDirectory(testInstance *testing.T) {
	client, creationError := svncmd.NewClient(&stubSubversionExecutor{})
	require.NoError(testInstance, creationError)

	workingCopyPath := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(workingCopyPath, ".svn"), 0o755))
	require.True(testInstance, client.IsWorkingCopy(workingCopyPath))

	plainDirectoryPath := testInstance.TempDir()
	require.False(testInstance, client.IsWorkingCopy(plainDirectoryPath))

	fileMetadataPath := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(fileMetadataPath, ".svn"), []byte("not a directory"), 0o644))
	require.False(testInstance, client.IsWorkingCopy(fileMetadataPath))
}
