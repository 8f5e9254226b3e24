package version

import (
	"runtime/debug"
	"sync"
)

// Product is the name sent in the default User-Agent header.
const Product = "apikit"

// ModulePath is the import path looked up in the host binary's build info.
const ModulePath = "github.com/kbukum/apikit"

// Version overrides the detected version. Set at build time using -ldflags.
var Version = ""

var (
	detectOnce sync.Once
	detected   string
)

// Info describes the apikit build linked into the running binary.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	// Sum is the module checksum, empty for local builds.
	Sum string `json:"sum,omitempty"`
	// Replaced is set when a replace directive points the module elsewhere.
	Replaced bool `json:"replaced,omitempty"`
}

// Get returns the version of apikit linked into the running binary.
func Get() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{Version: resolve(nil)}
	}
	info := Info{Version: resolve(bi), GoVersion: bi.GoVersion}
	if m := findModule(bi); m != nil {
		info.Sum = m.Sum
		info.Replaced = m.Replace != nil
	}
	return info
}

// String returns the version, "dev" when unknown.
func String() string {
	if Version != "" {
		return Version
	}
	detectOnce.Do(func() {
		bi, _ := debug.ReadBuildInfo()
		detected = resolve(bi)
	})
	return detected
}

// UserAgent returns the default User-Agent value, "apikit/<version>".
func UserAgent() string {
	return Product + "/" + String()
}

func resolve(bi *debug.BuildInfo) string {
	if Version != "" {
		return Version
	}
	if m := findModule(bi); m != nil {
		if m.Replace != nil && m.Replace.Version != "" {
			return m.Replace.Version
		}
		if m.Version != "" && m.Version != "(devel)" {
			return m.Version
		}
	}
	return "dev"
}

// findModule locates apikit either as the main module or as a dependency.
func findModule(bi *debug.BuildInfo) *debug.Module {
	if bi == nil {
		return nil
	}
	if bi.Main.Path == ModulePath {
		return &bi.Main
	}
	for _, dep := range bi.Deps {
		if dep.Path == ModulePath {
			return dep
		}
	}
	return nil
}
