package execshell

import "strings"

const (
	tokenSpaceConstant  = " "
	doubleQuoteConstant = `"`
)

// escapeShellToken wraps a token in double quotes when it contains a space and
// would otherwise be split by the shell. Tokens without embedded spaces pass
// through unescaped so shell built-ins resolved by relative name keep working.
func escapeShellToken(token string) string {
	if strings.Contains(token, tokenSpaceConstant) {
		return doubleQuoteConstant + token + doubleQuoteConstant
	}
	return token
}

// buildShellCommandLine renders the command and its arguments as a single
// shell command string, escaping each token independently. Raw command lines
// are passed through verbatim.
func buildShellCommandLine(command ShellCommand) string {
	if command.Details.RawCommandLine {
		return string(command.Name)
	}

	commandLineTokens := make([]string, 0, len(command.Details.Arguments)+1)
	commandLineTokens = append(commandLineTokens, escapeShellToken(string(command.Name)))
	for _, argumentToken := range command.Details.Arguments {
		commandLineTokens = append(commandLineTokens, escapeShellToken(argumentToken))
	}
	return strings.Join(commandLineTokens, tokenSpaceConstant)
}
