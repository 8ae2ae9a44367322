// Package flags provides helpers for binding standardized flags to Cobra
// commands: yes/no style toggles and choice usage formatting shared across the
// CLI surface.
package flags
