package execshell

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/bldx/internal/environment"
	"github.com/temirov/bldx/internal/platform"
	"github.com/temirov/bldx/internal/retry"
)

const (
	commandStartingMessageConstant        = "executing command"
	commandCompletedMessageConstant       = "command completed"
	commandFailedMessageConstant          = "command failed"
	commandExecutionFailedMessageConstant = "command could not be executed"
	shimFallbackMessageConstant           = "retrying spawn with shim extension"
	logFieldCommandConstant               = "command"
	logFieldArgumentsConstant             = "arguments"
	logFieldWorkingDirectoryConstant      = "working_directory"
	logFieldExitCodeConstant              = "exit_code"
	logFieldShimmedCommandConstant        = "shimmed_command"
)

// CommandRunner represents the ability to run shell commands synchronously.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ProcessStarter represents the ability to launch shell commands without
// blocking on their completion.
type ProcessStarter interface {
	Start(executionContext context.Context, command ShellCommand) (*ProcessHandle, error)
}

// ShellExecutor coordinates command preparation, environment sanitization,
// execution, retry, and failure classification.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
	sanitizer     environment.Sanitizer
	capabilities  platform.Capabilities
}

// NewShellExecutor constructs an executor around the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, commandRunner, nil)
}

// NewShellExecutorWithObserver constructs an executor that additionally
// notifies the supplied observer of command lifecycle events.
func NewShellExecutorWithObserver(logger *zap.Logger, commandRunner CommandRunner, eventObserver CommandEventObserver) (*ShellExecutor, error) {
	return NewShellExecutorForFamily(logger, commandRunner, eventObserver, platform.HostFamily())
}

// NewShellExecutorForFamily constructs an executor whose platform-conditional
// behavior follows the supplied family instead of the host's.
func NewShellExecutorForFamily(logger *zap.Logger, commandRunner CommandRunner, eventObserver CommandEventObserver, family platform.Family) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if eventObserver == nil {
		eventObserver = noopCommandEventObserver{}
	}

	capabilities := platform.CapabilitiesForFamily(family)
	return &ShellExecutor{
		logger:        logger,
		commandRunner: commandRunner,
		eventObserver: eventObserver,
		sanitizer:     environment.NewSanitizer(capabilities),
		capabilities:  capabilities,
	}, nil
}

// Execute runs the command synchronously, blocking until the child exits. A
// non-zero exit status surfaces as CommandFailedError alongside the result; a
// spawn failure surfaces as CommandExecutionError with captured stderr
// appended.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	preparedCommand := executor.prepareEnvironment(command, "")

	executor.logger.Info(
		commandStartingMessageConstant,
		zap.String(logFieldCommandConstant, string(preparedCommand.Name)),
		zap.Strings(logFieldArgumentsConstant, preparedCommand.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, preparedCommand.Details.WorkingDirectory),
	)
	executor.eventObserver.CommandStarted(preparedCommand)

	executionResult, runError := executor.runWithShimFallback(executionContext, preparedCommand)
	if runError != nil {
		executionError := CommandExecutionError{
			Command:        preparedCommand,
			Underlying:     runError,
			CapturedStderr: executionResult.StandardError,
		}
		executor.logger.Error(commandExecutionFailedMessageConstant, zap.Error(executionError))
		executor.eventObserver.CommandExecutionFailed(preparedCommand, executionError)
		return ExecutionResult{}, executionError
	}

	executor.eventObserver.CommandCompleted(preparedCommand, executionResult)
	if executionResult.ExitCode != 0 {
		failedError := CommandFailedError{Command: preparedCommand, Result: executionResult}
		executor.logger.Warn(
			commandFailedMessageConstant,
			zap.String(logFieldCommandConstant, string(preparedCommand.Name)),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		)
		return executionResult, failedError
	}

	executor.logger.Info(
		commandCompletedMessageConstant,
		zap.String(logFieldCommandConstant, string(preparedCommand.Name)),
	)
	return executionResult, nil
}

// ExecuteCaptured runs the command and returns its captured standard output.
// The invocation must request capture stdio mode.
func (executor *ShellExecutor) ExecuteCaptured(executionContext context.Context, command ShellCommand) (string, error) {
	if command.Details.effectiveStdioMode() != StdioModeCapture {
		return "", ErrCaptureModeRequired
	}

	executionResult, executionError := executor.Execute(executionContext, command)
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

// ExecuteAsync launches the command and returns a live process handle without
// blocking. Completion is observed through the handle; concurrently issued
// invocations carry no ordering guarantee.
func (executor *ShellExecutor) ExecuteAsync(executionContext context.Context, command ShellCommand) (*ProcessHandle, error) {
	processStarter, starterAvailable := executor.commandRunner.(ProcessStarter)
	if !starterAvailable {
		return nil, ErrAsyncExecutionUnsupported
	}

	preparedCommand := executor.prepareEnvironment(command, "")

	executor.logger.Info(
		commandStartingMessageConstant,
		zap.String(logFieldCommandConstant, string(preparedCommand.Name)),
		zap.Strings(logFieldArgumentsConstant, preparedCommand.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, preparedCommand.Details.WorkingDirectory),
	)
	executor.eventObserver.CommandStarted(preparedCommand)

	processHandle, startError := processStarter.Start(executionContext, preparedCommand)
	if startError != nil {
		if shimmedCommand, fallbackApplies := executor.shimFallbackCommand(preparedCommand, startError); fallbackApplies {
			executor.logger.Debug(shimFallbackMessageConstant, zap.String(logFieldShimmedCommandConstant, string(shimmedCommand.Name)))
			processHandle, startError = processStarter.Start(executionContext, shimmedCommand)
		}
	}
	if startError != nil {
		executionError := CommandExecutionError{Command: preparedCommand, Underlying: startError}
		executor.logger.Error(commandExecutionFailedMessageConstant, zap.Error(executionError))
		executor.eventObserver.CommandExecutionFailed(preparedCommand, executionError)
		return nil, executionError
	}

	return processHandle, nil
}

// ExecuteWithRetry wraps Execute in an attempt budget. Every failed attempt is
// logged with the command, its arguments, and the attempt number; after the
// budget is exhausted the last error is rethrown unchanged.
func (executor *ShellExecutor) ExecuteWithRetry(executionContext context.Context, command ShellCommand, maximumAttemptCount int, onRetryCallback func()) error {
	attemptLogger := executor.logger.With(
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
	)

	return retry.WithAttemptBudget(func() error {
		_, executionError := executor.Execute(executionContext, command)
		return executionError
	}, retry.AttemptBudgetPolicy{
		MaximumAttemptCount: maximumAttemptCount,
		Logger:              attemptLogger,
		OnFailedAttempt: func(int, error) {
			if onRetryCallback != nil {
				onRetryCallback()
			}
		},
	})
}

// ExecuteLifecycleCommand runs a package lifecycle script through the shell.
// The environment is always rebuilt through the sanitizer with INIT_CWD
// injected, and the declared command line is handed to the shell verbatim.
func (executor *ShellExecutor) ExecuteLifecycleCommand(executionContext context.Context, invocation LifecycleInvocation) (ExecutionResult, error) {
	stdioMode := StdioModeInherit
	switch {
	case invocation.CaptureOutput:
		stdioMode = StdioModeCapture
	case invocation.SuppressOutput:
		stdioMode = StdioModeSuppress
	}

	lifecycleCommand := ShellCommand{
		Name: CommandName(invocation.CommandLine),
		Details: CommandDetails{
			WorkingDirectory:     invocation.WorkingDirectory,
			EnvironmentVariables: invocation.EnvironmentOverride,
			StdioMode:            stdioMode,
			RawCommandLine:       true,
		},
	}

	preparedCommand := executor.prepareEnvironment(lifecycleCommand, invocation.InitialWorkingDirectory)
	preparedCommand.Details.KeepEnvironmentVerbatim = true
	return executor.Execute(executionContext, preparedCommand)
}

// prepareEnvironment applies the environment policy: unless the caller opted
// into a verbatim environment, the base snapshot (supplied or ambient) is
// sanitized into a fresh copy so double-processing never occurs downstream.
func (executor *ShellExecutor) prepareEnvironment(command ShellCommand, initialWorkingDirectory string) ShellCommand {
	if command.Details.KeepEnvironmentVerbatim {
		return command
	}

	preparedCommand := command
	if command.Details.EnvironmentVariables != nil {
		preparedCommand.Details.EnvironmentVariables = executor.sanitizer.BuildEnvironment(command.Details.EnvironmentVariables, initialWorkingDirectory)
	} else {
		preparedCommand.Details.EnvironmentVariables = executor.sanitizer.BuildProcessEnvironment(initialWorkingDirectory)
	}
	return preparedCommand
}

func (executor *ShellExecutor) shimFallbackCommand(command ShellCommand, startError error) (ShellCommand, bool) {
	if len(executor.capabilities.ExecutableShimExtension) == 0 {
		return ShellCommand{}, false
	}
	if command.Details.RawCommandLine {
		return ShellCommand{}, false
	}
	if strings.HasSuffix(string(command.Name), executor.capabilities.ExecutableShimExtension) {
		return ShellCommand{}, false
	}
	if !errors.Is(startError, exec.ErrNotFound) && !errors.Is(startError, syscall.ENOENT) {
		return ShellCommand{}, false
	}

	shimmedCommand := command
	shimmedCommand.Name = CommandName(string(command.Name) + executor.capabilities.ExecutableShimExtension)
	return shimmedCommand, true
}

// runWithShimFallback executes the command once and, when spawning reports a
// missing executable, retries once with the platform shim extension appended
// before giving up.
func (executor *ShellExecutor) runWithShimFallback(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError == nil {
		return executionResult, nil
	}

	shimmedCommand, fallbackApplies := executor.shimFallbackCommand(command, runError)
	if !fallbackApplies {
		return executionResult, runError
	}

	executor.logger.Debug(shimFallbackMessageConstant, zap.String(logFieldShimmedCommandConstant, string(shimmedCommand.Name)))
	return executor.commandRunner.Run(executionContext, shimmedCommand)
}
