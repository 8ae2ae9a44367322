package execshell

const (
	stdioModeInheritStringConstant  = "inherit"
	stdioModeCaptureStringConstant  = "capture"
	stdioModeSuppressStringConstant = "suppress"
)

// CommandName identifies the executable or shell command line to invoke.
type CommandName string

// StdioMode selects how the child's standard streams are connected.
type StdioMode string

// Supported stdio mode enumerations.
const (
	// StdioModeInherit connects the child's streams directly to the orchestrator's own.
	StdioModeInherit StdioMode = StdioMode(stdioModeInheritStringConstant)
	// StdioModeCapture pipes the child's output streams into the execution result.
	StdioModeCapture StdioMode = StdioMode(stdioModeCaptureStringConstant)
	// StdioModeSuppress discards output on success while retaining it for error reporting.
	StdioModeSuppress StdioMode = StdioMode(stdioModeSuppressStringConstant)
)

// CommandDetails describes one external process launch. Values are immutable
// once constructed; each call site builds its own instance and discards it
// after the invocation completes.
type CommandDetails struct {
	// Arguments are passed to the command in order.
	Arguments []string
	// WorkingDirectory is the child's working directory; empty inherits the orchestrator's.
	WorkingDirectory string
	// EnvironmentVariables supplies the base environment snapshot; nil selects the ambient process environment.
	EnvironmentVariables map[string]string
	// StdioMode selects stream handling; empty defaults to StdioModeCapture.
	StdioMode StdioMode
	// KeepEnvironmentVerbatim skips sanitization for environments a caller already prepared.
	KeepEnvironmentVerbatim bool
	// RawCommandLine marks Name as a complete shell command line whose tokens must not be re-escaped.
	RawCommandLine bool
}

// ShellCommand combines a CommandName with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// LifecycleInvocation describes a package lifecycle script execution request.
type LifecycleInvocation struct {
	// CommandLine is the complete shell command line declared by the package.
	CommandLine string
	// WorkingDirectory is the package folder the script runs in.
	WorkingDirectory string
	// InitialWorkingDirectory is injected as INIT_CWD so nested scripts can
	// locate configuration relative to the original invocation directory.
	InitialWorkingDirectory string
	// EnvironmentOverride supplies the base environment snapshot; nil selects
	// the ambient process environment. The override is sanitized like any
	// other base environment before the child observes it.
	EnvironmentOverride map[string]string
	// CaptureOutput pipes the script's streams into the result instead of inheriting the terminal.
	CaptureOutput bool
	// SuppressOutput discards the script's output on success while retaining
	// captured stderr for failure reports. CaptureOutput takes precedence.
	SuppressOutput bool
}

func (details CommandDetails) effectiveStdioMode() StdioMode {
	if len(details.StdioMode) == 0 {
		return StdioModeCapture
	}
	return details.StdioMode
}
