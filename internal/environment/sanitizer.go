package environment

import (
	"os"
	"strings"

	"github.com/temirov/bldx/internal/platform"
)

const (
	initialWorkingDirectoryVariableNameConstant  = "INIT_CWD"
	packageManagerConfigurationPrefixConstant    = "NPM_CONFIG_"
	environmentEntrySeparatorConstant            = "="
	environmentEntrySplitLimitConstant           = 2
)

// Sanitizer derives deterministic child-process environments from a base snapshot.
//
// Lifecycle tooling injects its entire configuration as environment variables
// into every nested invocation; sanitization strips those entries so nested
// package-manager invocations never inherit stale configuration from whatever
// originally invoked the orchestrator.
type Sanitizer struct {
	capabilities platform.Capabilities
}

// NewSanitizer constructs a sanitizer honoring the supplied platform capabilities.
func NewSanitizer(capabilities platform.Capabilities) Sanitizer {
	return Sanitizer{capabilities: capabilities}
}

// NewHostSanitizer constructs a sanitizer for the host platform family.
func NewHostSanitizer() Sanitizer {
	return NewSanitizer(platform.HostCapabilities())
}

// BuildEnvironment returns a freshly allocated snapshot derived from baseEnvironment
// with INIT_CWD and every NPM_CONFIG_-prefixed entry removed. When
// initialWorkingDirectory is non-empty it is injected as INIT_CWD after the strip
// step so the removal cannot clobber it. The function performs no I/O and never fails.
func (sanitizer Sanitizer) BuildEnvironment(baseEnvironment map[string]string, initialWorkingDirectory string) map[string]string {
	sanitizedEnvironment := make(map[string]string, len(baseEnvironment))
	for variableName, variableValue := range baseEnvironment {
		if sanitizer.shouldStripVariable(variableName) {
			continue
		}
		sanitizedEnvironment[variableName] = variableValue
	}

	if len(initialWorkingDirectory) > 0 {
		sanitizedEnvironment[initialWorkingDirectoryVariableNameConstant] = initialWorkingDirectory
	}

	return sanitizedEnvironment
}

// BuildProcessEnvironment sanitizes the ambient process environment.
func (sanitizer Sanitizer) BuildProcessEnvironment(initialWorkingDirectory string) map[string]string {
	return sanitizer.BuildEnvironment(SnapshotFromEntries(os.Environ()), initialWorkingDirectory)
}

func (sanitizer Sanitizer) shouldStripVariable(variableName string) bool {
	comparisonKey := variableName
	if sanitizer.capabilities.CaseInsensitiveEnvironment {
		comparisonKey = strings.ToUpper(variableName)
	}
	if comparisonKey == initialWorkingDirectoryVariableNameConstant {
		return true
	}
	return strings.HasPrefix(comparisonKey, packageManagerConfigurationPrefixConstant)
}

// SnapshotFromEntries converts "NAME=value" entries into a snapshot mapping.
// Malformed entries without a separator are passed through with an empty value.
func SnapshotFromEntries(environmentEntries []string) map[string]string {
	snapshot := make(map[string]string, len(environmentEntries))
	for _, environmentEntry := range environmentEntries {
		separatedEntry := strings.SplitN(environmentEntry, environmentEntrySeparatorConstant, environmentEntrySplitLimitConstant)
		if len(separatedEntry) == environmentEntrySplitLimitConstant {
			snapshot[separatedEntry[0]] = separatedEntry[1]
			continue
		}
		snapshot[separatedEntry[0]] = ""
	}
	return snapshot
}

// EntriesFromSnapshot converts a snapshot mapping into "NAME=value" entries.
func EntriesFromSnapshot(snapshot map[string]string) []string {
	environmentEntries := make([]string, 0, len(snapshot))
	for variableName, variableValue := range snapshot {
		environmentEntries = append(environmentEntries, variableName+environmentEntrySeparatorConstant+variableValue)
	}
	return environmentEntries
}
