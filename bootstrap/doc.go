// Package bootstrap wires the application together: logger, configuration,
// storage backends and the playbook dispatcher. Initialization failures are
// fatal in strict startup mode; graceful mode falls back to in-memory
// backends with a warning.
package bootstrap
