// Package version provides build version information embedding.
//
// Version and git commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/streamhaus/fugue/version.Version=1.0.0"
//
// When ldflags are absent, the git commit falls back to the VCS revision
// recorded in the Go build info.
package version
