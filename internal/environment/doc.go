// Package environment builds deterministic child-process environment
// snapshots by stripping tool-injected variables from an inherited base
// environment and optionally re-injecting an explicit INIT_CWD.
package environment
