// Package version reports which apikit release is linked into the running
// binary. The HTTP client uses it for the default User-Agent header.
//
// The version is read from the binary's build info. It can be pinned at
// compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/apikit/version.Version=v1.0.0"
package version
