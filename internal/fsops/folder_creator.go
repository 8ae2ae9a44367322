package fsops

import (
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/bldx/internal/retry"
)

const (
	defaultFolderCreationWaitBudgetConstant = 10 * time.Second
	defaultFolderPermissionsConstant        = fs.FileMode(0o755)
	lockTimeoutMessageTemplateConstant      = "could not create folder %q before the wait budget elapsed: %v (a handle on the path may be held by an editor or virus scanner)"
)

// LockTimeoutError reports that a lock-sensitive filesystem operation kept
// failing until its time budget elapsed. It wraps the last underlying
// operating system error.
type LockTimeoutError struct {
	Path       string
	Underlying error
}

// Error describes the exhausted operation with remediation guidance.
func (timeoutError LockTimeoutError) Error() string {
	return fmt.Sprintf(lockTimeoutMessageTemplateConstant, timeoutError.Path, timeoutError.Underlying)
}

// Unwrap exposes the last underlying operating system error.
func (timeoutError LockTimeoutError) Unwrap() error {
	return timeoutError.Underlying
}

// FolderCreator creates directory hierarchies, retrying through transient
// exclusive locks held by antivirus scanners or editors. Such locks release
// within several seconds in practice, so failed attempts repeat until a
// wall-clock budget runs out.
type FolderCreator struct {
	fileSystem  FileSystem
	clock       retry.Clock
	waitBudget  time.Duration
	permissions fs.FileMode
	logger      *zap.Logger
}

// NewFolderCreator constructs a creator with the default wait budget and
// folder permissions.
func NewFolderCreator(fileSystem FileSystem, logger *zap.Logger) *FolderCreator {
	return &FolderCreator{
		fileSystem:  fileSystem,
		clock:       retry.SystemClock{},
		waitBudget:  defaultFolderCreationWaitBudgetConstant,
		permissions: defaultFolderPermissionsConstant,
		logger:      logger,
	}
}

// WithClock substitutes the wall-clock source; tests use it to exhaust the
// wait budget without real delays.
func (creator *FolderCreator) WithClock(clock retry.Clock) *FolderCreator {
	creator.clock = clock
	return creator
}

// WithWaitBudget overrides the wall-clock window during which failed creation
// attempts are retried.
func (creator *FolderCreator) WithWaitBudget(waitBudget time.Duration) *FolderCreator {
	creator.waitBudget = waitBudget
	return creator
}

// EnsureFolder creates the folder hierarchy at the supplied path, retrying
// failed attempts until the wait budget elapses. On exhaustion the last
// operating system error is surfaced wrapped in LockTimeoutError.
func (creator *FolderCreator) EnsureFolder(folderPath string) error {
	_, creationError := retry.UntilTimeout(func() (struct{}, error) {
		return struct{}{}, creator.fileSystem.MkdirAll(folderPath, creator.permissions)
	}, retry.TimeBudgetPolicy{
		MaximumWaitDuration: creator.waitBudget,
		Clock:               creator.clock,
		Logger:              creator.logger,
		TimeoutErrorFactory: func(lastError error) error {
			return LockTimeoutError{Path: folderPath, Underlying: lastError}
		},
	})
	return creationError
}
