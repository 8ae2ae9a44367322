package platform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/bldx/internal/platform"
)

const (
	testWindowsCapabilitiesCaseNameConstant = "windows_family"
	testPOSIXCapabilitiesCaseNameConstant   = "posix_family"
	testUnknownFamilyCaseNameConstant       = "unknown_family_defaults_to_posix"
)

func TestCapabilitiesForFamily(testInstance *testing.T) {
	testCases := []struct {
		name                          string
		family                        platform.Family
		expectedShellExecutable       string
		expectedShellArguments        []string
		expectedCaseInsensitivity     bool
		expectedShimExtension         string
	}{
		{
			name:                      testWindowsCapabilitiesCaseNameConstant,
			family:                    platform.FamilyWindows,
			expectedShellExecutable:   "cmd.exe",
			expectedShellArguments:    []string{"/d", "/s", "/c"},
			expectedCaseInsensitivity: true,
			expectedShimExtension:     ".cmd",
		},
		{
			name:                      testPOSIXCapabilitiesCaseNameConstant,
			family:                    platform.FamilyPOSIX,
			expectedShellExecutable:   "/bin/sh",
			expectedShellArguments:    []string{"-c"},
			expectedCaseInsensitivity: false,
			expectedShimExtension:     "",
		},
		{
			name:                      testUnknownFamilyCaseNameConstant,
			family:                    platform.Family("plan9"),
			expectedShellExecutable:   "/bin/sh",
			expectedShellArguments:    []string{"-c"},
			expectedCaseInsensitivity: false,
			expectedShimExtension:     "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			capabilities := platform.CapabilitiesForFamily(testCase.family)
			require.Equal(testInstance, testCase.expectedShellExecutable, capabilities.ShellExecutable)
			require.Equal(testInstance, testCase.expectedShellArguments, capabilities.ShellArguments)
			require.Equal(testInstance, testCase.expectedCaseInsensitivity, capabilities.CaseInsensitiveEnvironment)
			require.Equal(testInstance, testCase.expectedShimExtension, capabilities.ExecutableShimExtension)
		})
	}
}

func TestCapabilitiesForFamilyReturnsIndependentArgumentSlices(testInstance *testing.T) {
	firstCapabilities := platform.CapabilitiesForFamily(platform.FamilyWindows)
	firstCapabilities.ShellArguments[0] = "/mutated"

	secondCapabilities := platform.CapabilitiesForFamily(platform.FamilyWindows)
	require.Equal(testInstance, "/d", secondCapabilities.ShellArguments[0])
}

func TestHostCapabilitiesMatchHostFamily(testInstance *testing.T) {
	hostCapabilities := platform.HostCapabilities()
	familyCapabilities := platform.CapabilitiesForFamily(platform.HostFamily())
	require.Equal(testInstance, familyCapabilities, hostCapabilities)
}
