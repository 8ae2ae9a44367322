// Package run assembles the run command, which executes a lifecycle command
// line through the platform shell.
package run

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/bldx/internal/execshell"
	"github.com/temirov/bldx/internal/retry"
	"github.com/temirov/bldx/internal/ui"
	"github.com/temirov/bldx/internal/utils"
	"github.com/temirov/bldx/internal/utils/flags"
)

const (
	commandUseConstant                    = "run [command line]"
	commandShortDescriptionConstant       = "Run a lifecycle command through the platform shell"
	commandLongDescriptionConstant        = "run executes a lifecycle command line through the platform shell with a sanitized environment and INIT_CWD pointing at the invocation directory."
	captureFlagNameConstant               = "capture"
	captureFlagDescriptionConstant        = "Capture child output instead of inheriting the terminal"
	quietFlagNameConstant                 = "quiet"
	quietFlagDescriptionConstant          = "Discard child output on success; failures still report captured stderr"
	attemptsFlagNameConstant              = "attempts"
	attemptsFlagDescriptionConstant       = "Number of attempts before giving up"
	commandLineRequiredMessageConstant    = "lifecycle command line required; provide arguments or tools.run.command configuration"
	executorCreationErrorTemplateConstant = "unable to construct shell executor: %w"
	workingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
	configurationFileLogFieldConstant     = "configuration_file"
	commandConfigurationSuffix            = ".command"
	attemptsConfigurationSuffix           = ".attempts"
	commandArgumentSeparatorConstant      = " "
	defaultAttemptCountConstant           = 1
)

// CommandConfiguration captures the run settings read from configuration.
type CommandConfiguration struct {
	Command  string `mapstructure:"command"`
	Attempts int    `mapstructure:"attempts"`
}

// DefaultConfigurationValues lists the configuration defaults registered under
// the provided key prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + commandConfigurationSuffix:  "",
		configurationKeyPrefix + attemptsConfigurationSuffix: defaultAttemptCountConstant,
	}
}

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider               func() *zap.Logger
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandRunner                execshell.CommandRunner

	captureEnabled   bool
	quietEnabled     bool
	attemptFlagValue int
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	flags.AddToggleFlag(command.Flags(), &builder.captureEnabled, captureFlagNameConstant, "", false, captureFlagDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), &builder.quietEnabled, quietFlagNameConstant, "", false, quietFlagDescriptionConstant)
	command.Flags().IntVar(&builder.attemptFlagValue, attemptsFlagNameConstant, 0, attemptsFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandLine := strings.TrimSpace(strings.Join(arguments, commandArgumentSeparatorConstant))
	if len(commandLine) == 0 {
		commandLine = strings.TrimSpace(configuration.Command)
	}
	if len(commandLine) == 0 {
		if helpError := command.Help(); helpError != nil {
			return helpError
		}
		return errors.New(commandLineRequiredMessageConstant)
	}

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	logger := builder.resolveLogger()
	configurationFilePath, configurationFileAvailable := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	if configurationFileAvailable && len(configurationFilePath) > 0 {
		logger = logger.With(zap.String(configurationFileLogFieldConstant, configurationFilePath))
	}

	executor, executorError := builder.buildExecutor(logger)
	if executorError != nil {
		return fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}

	invocation := execshell.LifecycleInvocation{
		CommandLine:             commandLine,
		WorkingDirectory:        workingDirectory,
		InitialWorkingDirectory: workingDirectory,
		CaptureOutput:           builder.captureEnabled,
		SuppressOutput:          builder.quietEnabled,
	}

	return retry.WithAttemptBudget(func() error {
		executionResult, lifecycleError := executor.ExecuteLifecycleCommand(command.Context(), invocation)
		if lifecycleError != nil {
			return lifecycleError
		}
		if builder.captureEnabled {
			fmt.Fprint(command.OutOrStdout(), executionResult.StandardOutput)
		}
		return nil
	}, retry.AttemptBudgetPolicy{
		MaximumAttemptCount: builder.resolveAttemptCount(configuration),
		Logger:              logger,
	})
}

func (builder *CommandBuilder) buildExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	commandRunner := builder.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewHostOSCommandRunner()
	}

	var eventObserver execshell.CommandEventObserver
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		eventObserver = ui.NewConsoleCommandEventLogger(logger)
	}

	return execshell.NewShellExecutorWithObserver(logger, commandRunner, eventObserver)
}

func (builder *CommandBuilder) resolveAttemptCount(configuration CommandConfiguration) int {
	if builder.attemptFlagValue > 0 {
		return builder.attemptFlagValue
	}
	if configuration.Attempts > 0 {
		return configuration.Attempts
	}
	return defaultAttemptCountConstant
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
