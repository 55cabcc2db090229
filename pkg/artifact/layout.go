package artifact

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/platform"
	"github.com/astral-sh/ruff-action/pkg/version"
)

// DefaultBaseURL is where ruff release assets are published.
const DefaultBaseURL = "https://github.com/astral-sh/ruff/releases/download"

const toolName = "ruff"

// NamingEpoch describes how artifacts are named for versions up to and
// including Through. A nil Through covers every later version.
type NamingEpoch struct {
	Through       *semver.Version
	TagPrefix     string // Prepended to the version in the download path
	VersionSuffix bool   // Artifact name carries the version
}

// ExtractionEpoch describes archive layout for versions from Since onwards.
type ExtractionEpoch struct {
	Since  *semver.Version
	Nested bool // Tar archives wrap the files in a directory named after the artifact
}

// Layout maps versions to artifact names and archive layouts.
type Layout struct {
	BaseURL    string
	Naming     []NamingEpoch     // Ordered by Through, ascending
	Extraction []ExtractionEpoch // Ordered by Since, ascending
}

// DefaultLayout returns the layout of ruff's published releases.
func DefaultLayout() Layout {
	return Layout{
		BaseURL: DefaultBaseURL,
		Naming: []NamingEpoch{
			{Through: semver.MustParse("0.1.7"), TagPrefix: "v"},
			{Through: semver.MustParse("0.4.10"), TagPrefix: "v", VersionSuffix: true},
			{},
		},
		Extraction: []ExtractionEpoch{
			{Since: semver.MustParse("0.0.0")},
			{Since: semver.MustParse("0.5.0"), Nested: true},
		},
	}
}

// Descriptor identifies the artifact for one (version, platform, arch).
type Descriptor struct {
	Version   string // Without any "v" prefix
	Platform  string
	Arch      string
	URL       string
	Extension string // ".tar.gz" or ".zip"
	Name      string // Unsuffixed artifact name, ruff-<arch>-<platform>
	Nested    bool   // Extracted files live in a directory called Name
}

// Describe computes the descriptor for version on platform/arch.
func (l Layout) Describe(v, plat, arch string) (Descriptor, error) {
	clean := version.Clean(v)
	sv, err := semver.StrictNewVersion(clean)
	if err != nil {
		return Descriptor{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "cannot describe artifact for version %q", v)
	}
	if plat == "" || arch == "" {
		return Descriptor{}, errs.New(errs.ErrCodeUnsupportedPlatform, "platform and architecture are required")
	}

	naming := l.naming(sv)
	d := Descriptor{
		Version:   clean,
		Platform:  plat,
		Arch:      arch,
		Extension: ".tar.gz",
		Name:      fmt.Sprintf("%s-%s-%s", toolName, arch, plat),
	}
	if plat == platform.Windows {
		d.Extension = ".zip"
	} else {
		d.Nested = l.nested(sv)
	}

	file := d.Name
	if naming.VersionSuffix {
		file = fmt.Sprintf("%s-%s-%s-%s", toolName, clean, arch, plat)
	}

	base := l.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	d.URL = fmt.Sprintf("%s/%s%s/%s%s", base, naming.TagPrefix, clean, file, d.Extension)
	return d, nil
}

func (l Layout) naming(v *semver.Version) NamingEpoch {
	for _, e := range l.Naming {
		if e.Through == nil || !v.GreaterThan(e.Through) {
			return e
		}
	}
	return NamingEpoch{}
}

func (l Layout) nested(v *semver.Version) bool {
	nested := false
	for _, e := range l.Extraction {
		if e.Since != nil && v.LessThan(e.Since) {
			break
		}
		nested = e.Nested
	}
	return nested
}
