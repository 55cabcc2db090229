package platform

import (
	"context"
	"errors"
	"testing"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

func detector(goos, goarch, distro string) *HostDetector {
	return &HostDetector{
		goos:   goos,
		goarch: goarch,
		distro: func(context.Context) (string, error) { return distro, nil },
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		goarch string
		distro string
		want   Info
	}{
		{"linux amd64", "linux", "amd64", "ubuntu", Info{LinuxGNU, "x86_64"}},
		{"alpine arm64", "linux", "arm64", "alpine", Info{LinuxMusl, "aarch64"}},
		{"darwin arm64", "darwin", "arm64", "", Info{Darwin, "aarch64"}},
		{"windows amd64", "windows", "amd64", "", Info{Windows, "x86_64"}},
		{"linux 386", "linux", "386", "debian", Info{LinuxGNU, "i686"}},
		{"linux ppc64le", "linux", "ppc64le", "rhel", Info{LinuxGNU, "powerpc64le"}},
		{"linux arm", "linux", "arm", "ubuntu", Info{LinuxGNUEABIHF, "armv7"}},
		{"alpine arm", "linux", "arm", "alpine", Info{LinuxMuslEABIHF, "armv7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detector(tt.goos, tt.goarch, tt.distro).Detect(context.Background())
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDetectUnsupported(t *testing.T) {
	tests := []struct {
		goos   string
		goarch string
	}{
		{"plan9", "amd64"},
		{"linux", "mips"},
		{"windows", "arm"},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			_, err := detector(tt.goos, tt.goarch, "").Detect(context.Background())
			if !errs.Is(err, errs.ErrCodeUnsupportedPlatform) {
				t.Errorf("Detect() error = %v, want UNSUPPORTED_PLATFORM", err)
			}
		})
	}
}

func TestDetectOverrides(t *testing.T) {
	d := detector("plan9", "mips", "")
	d.Platform = Windows
	d.Arch = "x86_64"

	got, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsWindows() || got.String() != "x86_64-pc-windows-msvc" {
		t.Errorf("Detect() = %+v", got)
	}
}

func TestDetectDistroFailureFallsBack(t *testing.T) {
	d := detector("linux", "amd64", "")
	d.distro = func(context.Context) (string, error) { return "", errors.New("no /etc/os-release") }

	got, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.Platform != LinuxGNU {
		t.Errorf("Platform = %q, want %q", got.Platform, LinuxGNU)
	}
}

func TestDetectArmOverride(t *testing.T) {
	d := detector("linux", "amd64", "ubuntu")
	d.Arch = "armv7"

	got, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "armv7-unknown-linux-gnueabihf" {
		t.Errorf("Detect() = %s, want armv7-unknown-linux-gnueabihf", got)
	}
}
