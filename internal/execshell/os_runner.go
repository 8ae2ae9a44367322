package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/temirov/bldx/internal/environment"
	"github.com/temirov/bldx/internal/platform"
)

// OSCommandRunner executes commands through the platform shell using os/exec.
//
// Shell mediation is deliberate: it normalizes quoting and redirection
// semantics across native shells and lets the platform resolve executable
// shims that direct spawning cannot locate reliably.
type OSCommandRunner struct {
	capabilities platform.Capabilities
}

// NewOSCommandRunner constructs a runner for the supplied platform capabilities.
func NewOSCommandRunner(capabilities platform.Capabilities) *OSCommandRunner {
	return &OSCommandRunner{capabilities: capabilities}
}

// NewHostOSCommandRunner constructs a runner for the host platform family.
func NewHostOSCommandRunner() *OSCommandRunner {
	return NewOSCommandRunner(platform.HostCapabilities())
}

// Run executes the supplied command synchronously, blocking until the child
// exits. A non-zero exit status is reported through the result, not the error;
// the error return is reserved for spawn failures.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	processHandle, startError := runner.Start(executionContext, command)
	if startError != nil {
		return ExecutionResult{}, startError
	}
	return processHandle.Wait()
}

// Start launches the supplied command and returns immediately with a live
// handle. The handle's Wait method delivers the execution result once the
// platform reports child completion.
func (runner *OSCommandRunner) Start(executionContext context.Context, command ShellCommand) (*ProcessHandle, error) {
	shellArguments := make([]string, 0, len(runner.capabilities.ShellArguments)+1)
	shellArguments = append(shellArguments, runner.capabilities.ShellArguments...)
	shellArguments = append(shellArguments, buildShellCommandLine(command))

	executable := exec.CommandContext(executionContext, runner.capabilities.ShellExecutable, shellArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if command.Details.EnvironmentVariables != nil {
		executable.Env = environment.EntriesFromSnapshot(command.Details.EnvironmentVariables)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer

	switch command.Details.effectiveStdioMode() {
	case StdioModeInherit:
		executable.Stdin = os.Stdin
		executable.Stdout = os.Stdout
		executable.Stderr = os.Stderr
	default:
		// Capture and Suppress both pipe the streams; Suppress only differs in
		// that the caller discards the output on success.
		executable.Stdout = &standardOutputBuffer
		executable.Stderr = &standardErrorBuffer
	}

	if startError := executable.Start(); startError != nil {
		return nil, startError
	}

	return newProcessHandle(executable, &standardOutputBuffer, &standardErrorBuffer), nil
}

// ProcessHandle tracks a launched child process until completion.
type ProcessHandle struct {
	waitFunction func() (ExecutionResult, error)
}

// NewProcessHandle wraps a completion function in a handle; test doubles use
// it to stand in for real child processes.
func NewProcessHandle(waitFunction func() (ExecutionResult, error)) *ProcessHandle {
	return &ProcessHandle{waitFunction: waitFunction}
}

func newProcessHandle(executable *exec.Cmd, standardOutputBuffer *bytes.Buffer, standardErrorBuffer *bytes.Buffer) *ProcessHandle {
	return NewProcessHandle(func() (ExecutionResult, error) {
		waitError := executable.Wait()
		executionResult := ExecutionResult{
			StandardOutput: standardOutputBuffer.String(),
			StandardError:  standardErrorBuffer.String(),
		}

		if waitError != nil {
			exitError := &exec.ExitError{}
			if errors.As(waitError, &exitError) {
				executionResult.ExitCode = exitError.ExitCode()
				return executionResult, nil
			}
			return executionResult, waitError
		}

		return executionResult, nil
	})
}

// Wait blocks until the child exits and reports its execution result.
func (handle *ProcessHandle) Wait() (ExecutionResult, error) {
	return handle.waitFunction()
}
