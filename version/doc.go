// Package version reports the rex build.
//
// Release builds stamp the version with ldflags:
//
//	go build -ldflags "-X github.com/kbukum/rex/version.Version=v1.0.0" ./cmd/rex
//
// Anything left unset is filled from the module and VCS stamps the Go
// toolchain embeds, so "go install github.com/kbukum/rex/cmd/rex@v1.2.0"
// reports v1.2.0.
package version
