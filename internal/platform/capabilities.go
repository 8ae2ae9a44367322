package platform

import "runtime"

const (
	windowsOperatingSystemNameConstant = "windows"
	windowsShellExecutableConstant     = "cmd.exe"
	posixShellExecutableConstant       = "/bin/sh"
	windowsShimExtensionConstant       = ".cmd"
	emptyShimExtensionConstant         = ""
)

var (
	windowsShellArgumentsConstant = []string{"/d", "/s", "/c"}
	posixShellArgumentsConstant   = []string{"-c"}
)

// Family identifies the coarse platform grouping that drives shell and environment behavior.
type Family string

// Supported platform family enumerations.
const (
	FamilyWindows Family = "windows"
	FamilyPOSIX   Family = "posix"
)

// Capabilities describes every platform-conditional behavior consumed by the execution core.
type Capabilities struct {
	// ShellExecutable is the command interpreter used for shell-mediated invocation.
	ShellExecutable string
	// ShellArguments precede the command string handed to the interpreter.
	ShellArguments []string
	// CaseInsensitiveEnvironment reports whether environment variable names compare case-insensitively.
	CaseInsensitiveEnvironment bool
	// ExecutableShimExtension is appended to a command name when spawning reports a missing executable; empty disables the fallback.
	ExecutableShimExtension string
}

var familyCapabilitiesMapping = map[Family]Capabilities{
	FamilyWindows: {
		ShellExecutable:            windowsShellExecutableConstant,
		ShellArguments:             windowsShellArgumentsConstant,
		CaseInsensitiveEnvironment: true,
		ExecutableShimExtension:    windowsShimExtensionConstant,
	},
	FamilyPOSIX: {
		ShellExecutable:            posixShellExecutableConstant,
		ShellArguments:             posixShellArgumentsConstant,
		CaseInsensitiveEnvironment: false,
		ExecutableShimExtension:    emptyShimExtensionConstant,
	},
}

var hostFamily = detectFamily(runtime.GOOS)

func detectFamily(operatingSystemName string) Family {
	if operatingSystemName == windowsOperatingSystemNameConstant {
		return FamilyWindows
	}
	return FamilyPOSIX
}

// HostFamily reports the platform family resolved once at process start.
func HostFamily() Family {
	return hostFamily
}

// CapabilitiesForFamily resolves the capability set for the supplied family.
func CapabilitiesForFamily(family Family) Capabilities {
	capabilities, familyKnown := familyCapabilitiesMapping[family]
	if !familyKnown {
		return familyCapabilitiesMapping[FamilyPOSIX]
	}
	duplicatedArguments := make([]string, len(capabilities.ShellArguments))
	copy(duplicatedArguments, capabilities.ShellArguments)
	capabilities.ShellArguments = duplicatedArguments
	return capabilities
}

// HostCapabilities resolves the capability set for the host platform family.
func HostCapabilities() Capabilities {
	return CapabilitiesForFamily(HostFamily())
}
