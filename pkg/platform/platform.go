// Package platform maps the running host to the target names ruff uses in
// its release artifacts.
//
// Ruff artifacts are named after Rust target triples split into an
// architecture ("x86_64") and a platform ("unknown-linux-gnu"). Linux hosts
// running musl, detected through gopsutil's distribution information, use
// the "unknown-linux-musl" builds.
package platform

import (
	"context"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

// Target platforms.
const (
	LinuxGNU  = "unknown-linux-gnu"
	LinuxMusl = "unknown-linux-musl"
	Darwin    = "apple-darwin"
	Windows   = "pc-windows-msvc"

	// 32-bit ARM builds use the hard-float ABI.
	LinuxGNUEABIHF  = "unknown-linux-gnueabihf"
	LinuxMuslEABIHF = "unknown-linux-musleabihf"
)

// Info is a resolved (platform, arch) pair.
type Info struct {
	Platform string // e.g. "unknown-linux-gnu"
	Arch     string // e.g. "x86_64"
}

// IsWindows reports whether artifacts for this platform are zip archives.
func (i Info) IsWindows() bool { return i.Platform == Windows }

// String returns the target triple, e.g. "x86_64-unknown-linux-gnu".
func (i Info) String() string { return i.Arch + "-" + i.Platform }

// Detector reports the host platform.
type Detector interface {
	Detect(ctx context.Context) (Info, error)
}

// HostDetector detects the platform from the Go runtime and, on Linux, the
// distribution reported by gopsutil.
type HostDetector struct {
	// Overrides; empty fields are detected.
	Platform string
	Arch     string

	goos, goarch string
	distro       func(ctx context.Context) (string, error)
}

// NewDetector returns a detector for the current host honoring the given
// overrides.
func NewDetector(platformOverride, archOverride string) *HostDetector {
	return &HostDetector{
		Platform: platformOverride,
		Arch:     archOverride,
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
		distro:   hostDistro,
	}
}

func hostDistro(ctx context.Context) (string, error) {
	p, _, _, err := host.PlatformInformationWithContext(ctx)
	return p, err
}

// Detect returns the target platform and architecture. Unknown operating
// systems or architectures yield an UNSUPPORTED_PLATFORM error.
func (d *HostDetector) Detect(ctx context.Context) (Info, error) {
	var info Info

	if d.Arch != "" {
		info.Arch = d.Arch
	} else {
		arch, ok := archNames[d.goarch]
		if !ok {
			return Info{}, errs.New(errs.ErrCodeUnsupportedPlatform, "Unsupported architecture: %s", d.goarch)
		}
		info.Arch = arch
	}

	if d.Platform != "" {
		info.Platform = d.Platform
		return info, nil
	}

	switch d.goos {
	case "linux":
		info.Platform = LinuxGNU
		if d.distro != nil {
			distro, err := d.distro(ctx)
			if err != nil && ctx.Err() != nil {
				return Info{}, ctx.Err()
			}
			if isMusl(distro) {
				info.Platform = LinuxMusl
			}
		}
		if info.Arch == "armv7" {
			info.Platform = armPlatform(info.Platform)
		}
	case "darwin":
		info.Platform = Darwin
	case "windows":
		info.Platform = Windows
	default:
		return Info{}, errs.New(errs.ErrCodeUnsupportedPlatform, "Unsupported platform: %s", d.goos)
	}
	if info.Arch == "armv7" && d.goos != "linux" {
		return Info{}, errs.New(errs.ErrCodeUnsupportedPlatform, "Unsupported architecture: %s on %s", d.goarch, d.goos)
	}
	return info, nil
}

var archNames = map[string]string{
	"amd64":   "x86_64",
	"arm64":   "aarch64",
	"386":     "i686",
	"arm":     "armv7",
	"ppc64le": "powerpc64le",
	"s390x":   "s390x",
}

// armPlatform maps a Linux platform to its hard-float ARM variant.
func armPlatform(linux string) string {
	if linux == LinuxMusl {
		return LinuxMuslEABIHF
	}
	return LinuxGNUEABIHF
}

func isMusl(distro string) bool {
	switch strings.ToLower(strings.TrimSpace(distro)) {
	case "alpine", "void-musl", "chimera":
		return true
	}
	return false
}
