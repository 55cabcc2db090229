// Package manifest extracts the version constraint a project declares for a
// tool from its dependency manifests.
//
// Two dialects are understood: pyproject.toml (PEP 621 dependencies,
// optional-dependency groups, PEP 735 dependency groups and Poetry
// dependency tables) and requirements-style text files. Extraction is best
// effort: unreadable or malformed manifests are logged and reported as "no
// version found" so callers can fall back to the latest release.
package manifest
