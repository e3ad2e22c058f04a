// Package version reports build metadata for the userservice binary.
//
// Version, commit, branch and build time are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/userservice/version.Version=1.2.0 \
//	  -X github.com/kbukum/userservice/version.BuildTime=2025-06-01T12:00:00Z" ./cmd/userservice
//
// Unstamped builds fall back to the VCS settings the Go toolchain embeds.
package version
