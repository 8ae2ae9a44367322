// Package fsops provides the filesystem primitives the executor and purge
// layers build on: an injectable FileSystem abstraction over operating system
// calls and a folder creator that retries through transient exclusive locks.
package fsops
