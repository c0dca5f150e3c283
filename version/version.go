// Package version holds the fmu-go library version recorded in tracklogs.
package version

// Version is the fmu-go library version. Overridden at build time via
// -ldflags "-X github.com/fmuio/fmu-go/version.Version=...".
var Version = "0.1.0"
