// Package retry provides the generic retry control structures used by the
// execution core: a wall-clock time budget shape for lock-sensitive
// filesystem operations and an attempt budget shape for whole-command
// retries.
package retry
