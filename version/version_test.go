package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	if got := UserAgent(); got != "apikit/1.2.3" {
		t.Errorf("got %q", got)
	}

	Version = ""
	if got := UserAgent(); !strings.HasPrefix(got, "apikit/") || got == "apikit/" {
		t.Errorf("expected a detected version, got %q", got)
	}
}

func TestResolve(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = ""

	tests := []struct {
		name string
		bi   *debug.BuildInfo
		want string
	}{
		{"no build info", nil, "dev"},
		{"not linked", &debug.BuildInfo{Main: debug.Module{Path: "example.com/app"}}, "dev"},
		{
			"main module devel",
			&debug.BuildInfo{Main: debug.Module{Path: ModulePath, Version: "(devel)"}},
			"dev",
		},
		{
			"dependency",
			&debug.BuildInfo{
				Main: debug.Module{Path: "example.com/app"},
				Deps: []*debug.Module{{Path: "github.com/rs/zerolog", Version: "v1.34.0"}, {Path: ModulePath, Version: "v0.4.1"}},
			},
			"v0.4.1",
		},
		{
			"replaced",
			&debug.BuildInfo{
				Main: debug.Module{Path: "example.com/app"},
				Deps: []*debug.Module{{
					Path: ModulePath, Version: "v0.4.1",
					Replace: &debug.Module{Path: "example.com/fork", Version: "v0.4.2-fork"},
				}},
			},
			"v0.4.2-fork",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolve(tc.bi); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolve_Override(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "9.9.9"

	bi := &debug.BuildInfo{Deps: []*debug.Module{{Path: ModulePath, Version: "v0.1.0"}}}
	if got := resolve(bi); got != "9.9.9" {
		t.Errorf("ldflags value should win, got %q", got)
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("version should never be empty")
	}
}
