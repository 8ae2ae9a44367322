package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	captureModeRequiredMessageConstant        = "captured execution requires capture stdio mode"
	asyncExecutionUnsupportedMessageConstant  = "configured runner does not support asynchronous execution"
	commandFailedTemplateConstant             = "%s failed with exit code %d"
	commandExecutionFailedTemplateConstant    = "%s could not be started: %s"
	standardErrorSuffixTemplateConstant       = ": %s"
)

// Configuration errors surfaced during executor construction and use.
var (
	// ErrLoggerNotConfigured reports a missing logger during construction.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured reports a missing runner during construction.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCaptureModeRequired reports a captured execution request without capture stdio mode.
	ErrCaptureModeRequired = errors.New(captureModeRequiredMessageConstant)
	// ErrAsyncExecutionUnsupported reports an asynchronous request against a runner without start support.
	ErrAsyncExecutionUnsupported = errors.New(asyncExecutionUnsupportedMessageConstant)
)

// CommandFailedError reports a child process that ran and exited with a
// non-zero status. It carries the execution result so callers can log a
// single actionable message without reassembling context.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failure including the exit code and captured stderr.
func (failedError CommandFailedError) Error() string {
	baseMessage := fmt.Sprintf(commandFailedTemplateConstant, failedError.Command.Name, failedError.Result.ExitCode)
	trimmedStandardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return baseMessage
	}
	return baseMessage + fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// CommandExecutionError reports a child process that could not be started at
// all. Captured stderr, when present, is appended to the underlying spawn
// error for context.
type CommandExecutionError struct {
	Command        ShellCommand
	Underlying     error
	CapturedStderr string
}

// Error describes the spawn failure augmented with any captured stderr.
func (executionError CommandExecutionError) Error() string {
	failureDescription := executionError.Underlying.Error()
	trimmedStandardError := strings.TrimSpace(executionError.CapturedStderr)
	if len(trimmedStandardError) > 0 {
		failureDescription = failureDescription + fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, executionError.Command.Name, failureDescription)
}

// Unwrap exposes the underlying spawn error for errors.Is inspection.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Underlying
}
