package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/bldx/internal/utils"
)

const (
	testPurgeCommandNameConstant   = "purge"
	testRunCommandNameConstant     = "run"
	testDebugLogLevelValueConstant = "debug"
	testConsoleLogFormatConstant   = "console"
)

func TestApplicationRegistersToolCommands(t *testing.T) {
	application := NewApplication()

	registeredCommandNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredCommandNames[registeredCommand.Name()] = true
	}

	require.True(t, registeredCommandNames[testPurgeCommandNameConstant])
	require.True(t, registeredCommandNames[testRunCommandNameConstant])
}

func TestApplicationEmbeddedDefaultsProvideToolConfigurations(t *testing.T) {
	application := NewApplication()

	require.NoError(t, application.initializeConfiguration(application.rootCommand))

	require.Equal(t, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.Equal(t, string(utils.LogFormatStructured), application.configuration.Common.LogFormat)
	require.Equal(t, 1, application.configuration.Tools.Run.Attempts)
	require.Empty(t, application.configuration.Tools.Purge.ExtraTargets)
}

func TestApplicationLogFlagsOverrideConfiguration(t *testing.T) {
	application := NewApplication()

	require.NoError(t, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, testDebugLogLevelValueConstant))
	require.NoError(t, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, testConsoleLogFormatConstant))
	require.NoError(t, application.initializeConfiguration(application.rootCommand))

	require.Equal(t, testDebugLogLevelValueConstant, application.configuration.Common.LogLevel)
	require.Equal(t, testConsoleLogFormatConstant, application.configuration.Common.LogFormat)
	require.True(t, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationAttachesConfigurationPathContext(t *testing.T) {
	application := NewApplication()

	require.NoError(t, application.initializeConfiguration(application.rootCommand))

	_, configurationPathAvailable := application.commandContextAccessor.ConfigurationFilePath(application.rootCommand.Context())
	require.True(t, configurationPathAvailable)
}

func TestEnvironmentVariableOverridesLogLevel(t *testing.T) {
	t.Setenv(environmentPrefixConstant+"_COMMON_LOG_LEVEL", testDebugLogLevelValueConstant)

	application := NewApplication()
	require.NoError(t, application.initializeConfiguration(application.rootCommand))

	require.Equal(t, testDebugLogLevelValueConstant, application.configuration.Common.LogLevel)
}
