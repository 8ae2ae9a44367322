// Package execshell executes external package-manager and lifecycle commands
// deterministically across operating systems.
//
// Invocation is always mediated by the platform shell so quoting, redirection,
// and executable-shim resolution behave identically everywhere. ShellExecutor
// wraps the runner with logging, environment sanitization, retry support, and
// failure classification; OSCommandRunner provides the default os/exec-backed
// execution.
package execshell
