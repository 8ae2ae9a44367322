package purge

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/bldx/internal/fsops"
)

const (
	targetDeletionFailedTemplateConstant = "purge target %q: %w"
	targetDeletedMessageConstant         = "purge target removed"
	targetFailedMessageConstant          = "purge target removal failed"
	logFieldTargetPathConstant           = "target_path"
	workspaceCommonFolderNameConstant    = "common"
	workspaceTemporaryFolderNameConstant = "temp"
	userToolFolderNameConstant           = ".bldx"
	sharedStoreFolderNameConstant        = "store"
	sharedCacheFolderNameConstant        = "cache"
)

// DefaultNormalTargets resolves the workspace-local paths removed by a plain
// purge: the shared temporary folder that holds per-project install state.
func DefaultNormalTargets(workspaceRoot string) []string {
	return []string{
		filepath.Join(workspaceRoot, workspaceCommonFolderNameConstant, workspaceTemporaryFolderNameConstant),
	}
}

// DefaultUnsafeTargets resolves the machine-shared paths removed only on
// explicit opt-in: the content-addressable store and the shared cache under
// the user home. Removing them while another invocation installs elsewhere on
// the machine corrupts that invocation's state.
func DefaultUnsafeTargets(userHomeDirectory string) []string {
	return []string{
		filepath.Join(userHomeDirectory, userToolFolderNameConstant, sharedStoreFolderNameConstant),
		filepath.Join(userHomeDirectory, userToolFolderNameConstant, sharedCacheFolderNameConstant),
	}
}

// Orchestrator collects purge targets and deletes them in the background.
type Orchestrator struct {
	fileSystem fsops.FileSystem
	logger     *zap.Logger

	registrationMutex sync.Mutex
	normalTargets     []string
	unsafeTargets     []string

	completionGroup sync.WaitGroup
	failureMutex    sync.Mutex
	targetFailures  []error
}

// NewOrchestrator constructs an orchestrator deleting through the supplied
// filesystem.
func NewOrchestrator(fileSystem fsops.FileSystem, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{fileSystem: fileSystem, logger: logger}
}

// RegisterNormalTargets adds workspace-scoped paths. No other process depends
// on these specific paths, so they are safe to remove while unrelated
// invocations run elsewhere on the machine.
func (orchestrator *Orchestrator) RegisterNormalTargets(targetPaths ...string) {
	orchestrator.registrationMutex.Lock()
	defer orchestrator.registrationMutex.Unlock()
	orchestrator.normalTargets = append(orchestrator.normalTargets, targetPaths...)
}

// RegisterUnsafeTargets adds machine-shared paths. Callers invoke this only
// after an explicit opt-in because concurrent invocations elsewhere on the
// machine depend on these locations. The tier is tracked separately from the
// normal tier so the opt-in decision stays inspectable after registration.
func (orchestrator *Orchestrator) RegisterUnsafeTargets(targetPaths ...string) {
	orchestrator.registrationMutex.Lock()
	defer orchestrator.registrationMutex.Unlock()
	orchestrator.unsafeTargets = append(orchestrator.unsafeTargets, targetPaths...)
}

// NormalTargets reports the registered workspace-scoped target paths.
func (orchestrator *Orchestrator) NormalTargets() []string {
	orchestrator.registrationMutex.Lock()
	defer orchestrator.registrationMutex.Unlock()
	return copyTargetPaths(orchestrator.normalTargets)
}

// UnsafeTargets reports the registered machine-shared target paths.
func (orchestrator *Orchestrator) UnsafeTargets() []string {
	orchestrator.registrationMutex.Lock()
	defer orchestrator.registrationMutex.Unlock()
	return copyTargetPaths(orchestrator.unsafeTargets)
}

// RegisteredTargets reports every registered target path, normal tier first.
func (orchestrator *Orchestrator) RegisteredTargets() []string {
	orchestrator.registrationMutex.Lock()
	defer orchestrator.registrationMutex.Unlock()
	combinedTargets := make([]string, 0, len(orchestrator.normalTargets)+len(orchestrator.unsafeTargets))
	combinedTargets = append(combinedTargets, orchestrator.normalTargets...)
	combinedTargets = append(combinedTargets, orchestrator.unsafeTargets...)
	return combinedTargets
}

func copyTargetPaths(targetPaths []string) []string {
	targetsCopy := make([]string, len(targetPaths))
	copy(targetsCopy, targetPaths)
	return targetsCopy
}

// Purge initiates deletion of every registered path and returns before the
// deletions complete. Each path is removed literally, glob metacharacters
// included; a nonexistent path is a no-op. A failing target is recorded and
// does not prevent attempting the remaining targets.
func (orchestrator *Orchestrator) Purge() {
	targetPaths := orchestrator.RegisteredTargets()

	orchestrator.completionGroup.Add(1)
	go func() {
		defer orchestrator.completionGroup.Done()
		for _, targetPath := range targetPaths {
			orchestrator.deleteTarget(targetPath)
		}
	}()
}

func (orchestrator *Orchestrator) deleteTarget(targetPath string) {
	deletionError := orchestrator.fileSystem.RemoveAll(targetPath)
	if deletionError != nil {
		orchestrator.logger.Warn(
			targetFailedMessageConstant,
			zap.String(logFieldTargetPathConstant, targetPath),
			zap.Error(deletionError),
		)
		orchestrator.recordFailure(fmt.Errorf(targetDeletionFailedTemplateConstant, targetPath, deletionError))
		return
	}

	orchestrator.logger.Info(targetDeletedMessageConstant, zap.String(logFieldTargetPathConstant, targetPath))
}

func (orchestrator *Orchestrator) recordFailure(targetFailure error) {
	orchestrator.failureMutex.Lock()
	defer orchestrator.failureMutex.Unlock()
	orchestrator.targetFailures = append(orchestrator.targetFailures, targetFailure)
}

// WaitForCompletion blocks until every initiated deletion pass finishes and
// reports the per-target failures joined into one error, or nil when every
// target was removed.
func (orchestrator *Orchestrator) WaitForCompletion() error {
	orchestrator.completionGroup.Wait()

	orchestrator.failureMutex.Lock()
	defer orchestrator.failureMutex.Unlock()
	return errors.Join(orchestrator.targetFailures...)
}
