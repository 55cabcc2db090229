package version

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Latest is the request for the newest published release.
const Latest = "latest"

// Stage identifies which ordering scheme produced a match.
type Stage int

const (
	StageNone Stage = iota
	StageSemver
	StagePEP440
)

func (s Stage) String() string {
	switch s {
	case StageSemver:
		return "semver"
	case StagePEP440:
		return "pep440"
	default:
		return "none"
	}
}

// Match is the outcome of [MaxSatisfying].
type Match struct {
	Tag   string // Original tag string; empty when nothing matched
	Stage Stage
}

// Found reports whether a tag matched.
func (m Match) Found() bool { return m.Tag != "" }

// Clean strips surrounding whitespace and any leading "=" or "v" characters.
func Clean(v string) string {
	return strings.TrimLeft(strings.TrimSpace(v), "=v")
}

// IsExplicit reports whether v names exactly one version: a full
// MAJOR.MINOR.PATCH semantic version with an optional "v" prefix and no
// range operators or wildcards.
func IsExplicit(v string) bool {
	if v == "" {
		return false
	}
	_, err := semver.StrictNewVersion(Clean(v))
	return err == nil
}

// MaxSatisfying returns the greatest tag satisfying spec, trying semver
// range rules first and PEP 440 specifier rules second.
func MaxSatisfying(tags []string, spec string) Match {
	if tag := maxSemver(tags, spec); tag != "" {
		return Match{Tag: tag, Stage: StageSemver}
	}
	if tag := maxPEP440(tags, spec); tag != "" {
		return Match{Tag: tag, Stage: StagePEP440}
	}
	return Match{}
}

// EvaluateSemver returns the greatest version satisfying the semver range
// spec, or "" if none does or spec is not a valid range.
func EvaluateSemver(versions []string, spec string) string {
	return maxSemver(versions, spec)
}

func maxSemver(tags []string, spec string) string {
	c, err := semver.NewConstraint(spec)
	if err != nil {
		return ""
	}
	var best *semver.Version
	for _, tag := range tags {
		v, err := semver.NewVersion(tag)
		if err != nil || !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return ""
	}
	return best.Original()
}

// maxPEP440 skips pre-releases unless the specifier names one or no final
// release satisfies it.
func maxPEP440(tags []string, spec string) string {
	specs, err := pep440.NewSpecifiers(spec)
	if err != nil {
		return ""
	}
	var best, bestPre pep440.Version
	bestTag, bestPreTag := "", ""
	for _, tag := range tags {
		v, err := pep440.Parse(tag)
		if err != nil || !specs.Check(v) {
			continue
		}
		if v.IsPreRelease() {
			if bestPreTag == "" || v.GreaterThan(bestPre) {
				bestPre, bestPreTag = v, tag
			}
			continue
		}
		if bestTag == "" || v.GreaterThan(best) {
			best, bestTag = v, tag
		}
	}
	if bestPreTag != "" && (bestTag == "" || (namesPreRelease(spec) && bestPre.GreaterThan(best))) {
		return bestPreTag
	}
	return bestTag
}

// namesPreRelease reports whether any clause of a PEP 440 specifier pins a
// pre-release, as in ">=0.6.0rc1".
func namesPreRelease(spec string) bool {
	for _, clause := range strings.Split(spec, ",") {
		clause = strings.TrimLeft(strings.TrimSpace(clause), "=<>!~ ")
		clause = strings.TrimSuffix(clause, ".*")
		if v, err := pep440.Parse(clause); err == nil && v.IsPreRelease() {
			return true
		}
	}
	return false
}

// Sort returns the tags that parse as semantic versions, newest first.
// Tags that do not parse are dropped.
func Sort(tags []string) []string {
	vs := make([]*semver.Version, 0, len(tags))
	for _, tag := range tags {
		if v, err := semver.NewVersion(tag); err == nil {
			vs = append(vs, v)
		}
	}
	slices.SortStableFunc(vs, func(a, b *semver.Version) int { return b.Compare(a) })

	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Original()
	}
	return out
}

// Newest returns the greatest semantic version among tags, or "".
func Newest(tags []string) string {
	if sorted := Sort(tags); len(sorted) > 0 {
		return sorted[0]
	}
	return ""
}
