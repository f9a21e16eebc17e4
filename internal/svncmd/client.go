package svncmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/svnwc/internal/execshell"
)

const (
	checkoutSubcommandConstant              = "checkout"
	updateSubcommandConstant                = "update"
	exportSubcommandConstant                = "export"
	listSubcommandConstant                  = "list"
	nonInteractiveFlagConstant              = "--non-interactive"
	forceFlagConstant                       = "--force"
	workingCopyMetadataDirectoryConstant    = ".svn"
	repositoryURLFieldNameConstant          = "repository_url"
	targetPathFieldNameConstant             = "target_path"
	workingCopyPathFieldNameConstant        = "working_copy_path"
	parentURLFieldNameConstant              = "parent_url"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "subversion executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	emptyParentDirectoryTemplateConstant    = "no entries found under %s"
	repositoryURLSeparatorConstant          = "/"
	checkoutOperationNameConstant           = OperationName("Checkout")
	updateOperationNameConstant             = OperationName("Update")
	exportOperationNameConstant             = OperationName("Export")
	listEntriesOperationNameConstant        = OperationName("ListEntries")
)

// OperationName describes a named Subversion workflow supported by the client.
type OperationName string

// CheckoutOptions configures Checkout invocations.
type CheckoutOptions struct {
	RepositoryURL string
	TargetPath    string
}

// UpdateOptions configures Update invocations.
type UpdateOptions struct {
	WorkingCopyPath string
}

// ExportOptions configures Export invocations.
type ExportOptions struct {
	RepositoryURL string
	TargetPath    string
	Force         bool
}

// SubversionCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type SubversionCommandExecutor interface {
	ExecuteSubversion(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates Subversion client invocations through execshell.
type Client struct {
	executor SubversionCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for Subversion operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// EmptyParentDirectoryError indicates a parent location without child entries.
type EmptyParentDirectoryError struct {
	ParentURL string
}

// Error describes the empty parent directory.
func (emptyError EmptyParentDirectoryError) Error() string {
	return fmt.Sprintf(emptyParentDirectoryTemplateConstant, emptyError.ParentURL)
}

// NewClient constructs a Subversion client.
func NewClient(executor SubversionCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// Checkout materializes a working copy of the repository at the target path using svn checkout.
func (client *Client) Checkout(executionContext context.Context, options CheckoutOptions) (execshell.ExecutionResult, error) {
	repositoryURL := strings.TrimSpace(options.RepositoryURL)
	if len(repositoryURL) == 0 {
		return execshell.ExecutionResult{}, InvalidInputError{FieldName: repositoryURLFieldNameConstant, Message: requiredValueMessageConstant}
	}
	targetPath := strings.TrimSpace(options.TargetPath)
	if len(targetPath) == 0 {
		return execshell.ExecutionResult{}, InvalidInputError{FieldName: targetPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			checkoutSubcommandConstant,
			nonInteractiveFlagConstant,
			repositoryURL,
			targetPath,
		},
	}

	executionResult, executionError := client.executor.ExecuteSubversion(executionContext, commandDetails)
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: checkoutOperationNameConstant, Cause: executionError}
	}
	return executionResult, nil
}

// Update refreshes an existing working copy using svn update.
func (client *Client) Update(executionContext context.Context, options UpdateOptions) (execshell.ExecutionResult, error) {
	workingCopyPath := strings.TrimSpace(options.WorkingCopyPath)
	if len(workingCopyPath) == 0 {
		return execshell.ExecutionResult{}, InvalidInputError{FieldName: workingCopyPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			updateSubcommandConstant,
			nonInteractiveFlagConstant,
			workingCopyPath,
		},
	}

	executionResult, executionError := client.executor.ExecuteSubversion(executionContext, commandDetails)
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: updateOperationNameConstant, Cause: executionError}
	}
	return executionResult, nil
}

// Export produces a metadata-free copy of the repository at the target path using svn export.
func (client *Client) Export(executionContext context.Context, options ExportOptions) (execshell.ExecutionResult, error) {
	repositoryURL := strings.TrimSpace(options.RepositoryURL)
	if len(repositoryURL) == 0 {
		return execshell.ExecutionResult{}, InvalidInputError{FieldName: repositoryURLFieldNameConstant, Message: requiredValueMessageConstant}
	}
	targetPath := strings.TrimSpace(options.TargetPath)
	if len(targetPath) == 0 {
		return execshell.ExecutionResult{}, InvalidInputError{FieldName: targetPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	exportArguments := []string{exportSubcommandConstant, nonInteractiveFlagConstant}
	if options.Force {
		exportArguments = append(exportArguments, forceFlagConstant)
	}
	exportArguments = append(exportArguments, repositoryURL, targetPath)

	executionResult, executionError := client.executor.ExecuteSubversion(executionContext, execshell.CommandDetails{Arguments: exportArguments})
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: exportOperationNameConstant, Cause: executionError}
	}
	return executionResult, nil
}

// ListEntries returns the child entry names of a repository location using svn list.
//
// Entries are trimmed and blank lines dropped; the listing order reported by
// the tool is preserved.
func (client *Client) ListEntries(executionContext context.Context, repositoryURL string) ([]string, error) {
	trimmedRepositoryURL := strings.TrimSpace(repositoryURL)
	if len(trimmedRepositoryURL) == 0 {
		return nil, InvalidInputError{FieldName: repositoryURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			listSubcommandConstant,
			nonInteractiveFlagConstant,
			trimmedRepositoryURL,
		},
	}

	executionResult, executionError := client.executor.ExecuteSubversion(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listEntriesOperationNameConstant, Cause: executionError}
	}

	entryLines := strings.Split(executionResult.StandardOutput, "\n")
	entries := make([]string, 0, len(entryLines))
	for _, entryLine := range entryLines {
		trimmedLine := strings.TrimSpace(entryLine)
		if len(trimmedLine) == 0 {
			continue
		}
		entries = append(entries, trimmedLine)
	}
	return entries, nil
}

// ResolveLatestChild selects the lexicographically greatest child of a parent
// location and returns its full repository URL.
func (client *Client) ResolveLatestChild(executionContext context.Context, parentURL string) (string, error) {
	trimmedParentURL := strings.TrimSpace(parentURL)
	if len(trimmedParentURL) == 0 {
		return "", InvalidInputError{FieldName: parentURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	entries, listError := client.ListEntries(executionContext, trimmedParentURL)
	if listError != nil {
		return "", listError
	}
	if len(entries) == 0 {
		return "", EmptyParentDirectoryError{ParentURL: trimmedParentURL}
	}

	sortedEntries := append([]string{}, entries...)
	sort.Strings(sortedEntries)
	latestEntry := strings.TrimSuffix(sortedEntries[len(sortedEntries)-1], repositoryURLSeparatorConstant)

	return joinRepositoryURL(trimmedParentURL, latestEntry), nil
}

// IsWorkingCopy reports whether the path contains Subversion working copy metadata.
func (client *Client) IsWorkingCopy(candidatePath string) bool {
	metadataInfo, statError := os.Stat(filepath.Join(candidatePath, workingCopyMetadataDirectoryConstant))
	if statError != nil {
		return false
	}
	return metadataInfo.IsDir()
}

func joinRepositoryURL(parentURL string, childEntry string) string {
	return strings.TrimSuffix(parentURL, repositoryURLSeparatorConstant) + repositoryURLSeparatorConstant + childEntry
}
