// Package platform isolates every platform-conditional behavior behind a
// capability lookup keyed by platform family, so the rest of the execution
// core stays platform-agnostic.
package platform
