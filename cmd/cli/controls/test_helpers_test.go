package controls_test

import (
	"context"
	"os"

	"github.com/temirov/svnwc/internal/execshell"
	"github.com/temirov/svnwc/internal/svncmd"
)

// scriptedWorkingCopyClient records the svn operations commands request and
// answers them without a subversion installation. Exported trees are created
// on disk when createExportedTrees is set so staged exports can replicate.
type scriptedWorkingCopyClient struct {
	workingCopyPaths    map[string]bool
	latestChildByParent map[string]string
	updateError         error
	resolutionError     error
	createExportedTrees bool
	checkoutTargets     []string
	updateTargets       []string
	exportTargets       []string
	recordedParentURLs  []string
}

func (client *scriptedWorkingCopyClient) Checkout(_ context.Context, options svncmd.CheckoutOptions) (execshell.ExecutionResult, error) {
	client.checkoutTargets = append(client.checkoutTargets, options.TargetPath)
	return execshell.ExecutionResult{}, nil
}

func (client *scriptedWorkingCopyClient) Update(_ context.Context, options svncmd.UpdateOptions) (execshell.ExecutionResult, error) {
	client.updateTargets = append(client.updateTargets, options.WorkingCopyPath)
	if client.updateError != nil {
		return execshell.ExecutionResult{}, client.updateError
	}
	return execshell.ExecutionResult{}, nil
}

func (client *scriptedWorkingCopyClient) Export(_ context.Context, options svncmd.ExportOptions) (execshell.ExecutionResult, error) {
	client.exportTargets = append(client.exportTargets, options.TargetPath)
	if client.createExportedTrees {
		if creationError := os.MkdirAll(options.TargetPath, 0o755); creationError != nil {
			return execshell.ExecutionResult{}, creationError
		}
	}
	return execshell.ExecutionResult{}, nil
}

func (client *scriptedWorkingCopyClient) ListEntries(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (client *scriptedWorkingCopyClient) ResolveLatestChild(_ context.Context, parentURL string) (string, error) {
	client.recordedParentURLs = append(client.recordedParentURLs, parentURL)
	if client.resolutionError != nil {
		return "", client.resolutionError
	}
	return client.latestChildByParent[parentURL], nil
}

func (client *scriptedWorkingCopyClient) IsWorkingCopy(candidatePath string) bool {
	return client.workingCopyPaths[candidatePath]
}
