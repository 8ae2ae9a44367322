// Package purge assembles the purge command, the CLI surface of the purge
// orchestrator.
package purge

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/bldx/internal/fsops"
	"github.com/temirov/bldx/internal/purge"
	"github.com/temirov/bldx/internal/utils"
	"github.com/temirov/bldx/internal/utils/flags"
)

const (
	commandUseConstant                    = "purge"
	commandShortDescriptionConstant       = "Remove cached and temporary workspace state"
	commandLongDescriptionConstant        = "purge deletes the workspace build caches and, on explicit opt-in, the machine-shared store and cache under the user home."
	unsafeFlagNameConstant                = "unsafe"
	unsafeFlagDescriptionConstant         = "Also remove machine-shared stores under the user home"
	workspaceFlagNameConstant             = "workspace"
	workspaceFlagDescriptionConstant      = "Workspace root containing the common/temp cache"
	asynchronousNoticeMessageConstant     = "Deletion finishes asynchronously; waiting for completion before exit."
	targetRegisteredMessageConstant       = "purge target registered"
	logFieldTargetPathConstant            = "target_path"
	configurationFileLogFieldConstant     = "configuration_file"
	workingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
	userHomeErrorTemplateConstant         = "unable to resolve user home directory: %w"
	purgeFailureTemplateConstant          = "purge completed with failures: %w"
	workspaceRootConfigurationSuffix      = ".workspace_root"
	extraTargetsConfigurationSuffix       = ".extra_targets"
)

// LoggerProvider supplies the logger configured by the root command.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures the purge settings read from configuration.
type CommandConfiguration struct {
	WorkspaceRoot string   `mapstructure:"workspace_root"`
	ExtraTargets  []string `mapstructure:"extra_targets"`
}

// DefaultConfigurationValues lists the configuration defaults registered under
// the provided key prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + workspaceRootConfigurationSuffix: "",
		configurationKeyPrefix + extraTargetsConfigurationSuffix:  []string{},
	}
}

// CommandBuilder assembles the purge command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            fsops.FileSystem

	unsafeEnabled     bool
	workspaceOverride string
}

// Build constructs the purge command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	flags.AddToggleFlag(command.Flags(), &builder.unsafeEnabled, unsafeFlagNameConstant, "", false, unsafeFlagDescriptionConstant)
	command.Flags().StringVar(&builder.workspaceOverride, workspaceFlagNameConstant, "", workspaceFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	configurationFilePath, configurationFileAvailable := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	if configurationFileAvailable && len(configurationFilePath) > 0 {
		logger = logger.With(zap.String(configurationFileLogFieldConstant, configurationFilePath))
	}

	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = fsops.OSFileSystem{}
	}

	workspaceRoot, workspaceError := builder.resolveWorkspaceRoot(configuration, fileSystem)
	if workspaceError != nil {
		return workspaceError
	}

	orchestrator := purge.NewOrchestrator(fileSystem, logger)
	orchestrator.RegisterNormalTargets(purge.DefaultNormalTargets(workspaceRoot)...)
	orchestrator.RegisterNormalTargets(configuration.ExtraTargets...)

	if builder.unsafeEnabled {
		userHomeDirectory, userHomeError := os.UserHomeDir()
		if userHomeError != nil {
			return fmt.Errorf(userHomeErrorTemplateConstant, userHomeError)
		}
		orchestrator.RegisterUnsafeTargets(purge.DefaultUnsafeTargets(userHomeDirectory)...)
	}

	for _, targetPath := range orchestrator.RegisteredTargets() {
		logger.Info(targetRegisteredMessageConstant, zap.String(logFieldTargetPathConstant, targetPath))
	}

	fmt.Fprintln(command.OutOrStdout(), asynchronousNoticeMessageConstant)
	orchestrator.Purge()

	if completionError := orchestrator.WaitForCompletion(); completionError != nil {
		return fmt.Errorf(purgeFailureTemplateConstant, completionError)
	}
	return nil
}

func (builder *CommandBuilder) resolveWorkspaceRoot(configuration CommandConfiguration, fileSystem fsops.FileSystem) (string, error) {
	workspaceRoot := strings.TrimSpace(builder.workspaceOverride)
	if len(workspaceRoot) == 0 {
		workspaceRoot = strings.TrimSpace(configuration.WorkspaceRoot)
	}
	if len(workspaceRoot) == 0 {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		workspaceRoot = workingDirectory
	}

	absoluteWorkspaceRoot, absoluteError := fileSystem.Abs(workspaceRoot)
	if absoluteError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, absoluteError)
	}
	return absoluteWorkspaceRoot, nil
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
