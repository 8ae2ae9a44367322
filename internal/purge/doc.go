// Package purge removes cached and temporary workspace state. Targets are
// registered in two tiers: normal targets are scoped to the workspace and safe
// to remove while unrelated invocations run elsewhere on the machine, while
// unsafe targets live in machine-shared locations and are only removed on
// explicit opt-in. Deletion runs in the background; callers that need
// determinism wait through an explicit hook.
package purge
