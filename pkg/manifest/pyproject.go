package manifest

import (
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	DependencyGroups map[string][]any `toml:"dependency-groups"`
	Tool             struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// FromPyproject returns the tool's constraint from pyproject.toml content.
// Standard lists are searched first (project dependencies, optional
// dependency groups, dependency groups), then Poetry tables. Groups are
// visited in name order. Malformed TOML is an INVALID_MANIFEST error.
func (e *Extractor) FromPyproject(data []byte) (string, bool, error) {
	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", false, errs.Wrap(errs.ErrCodeInvalidManifest, err, "parse pyproject.toml")
	}

	const source = "pyproject.toml"
	find := func(specs []string) (string, bool) {
		for _, s := range specs {
			if spec, ok := e.fromSpec(s, source); ok {
				return spec, true
			}
		}
		return "", false
	}

	if spec, ok := find(doc.Project.Dependencies); ok {
		return spec, true, nil
	}
	for _, g := range slices.Sorted(maps.Keys(doc.Project.OptionalDependencies)) {
		if spec, ok := find(doc.Project.OptionalDependencies[g]); ok {
			return spec, true, nil
		}
	}
	for _, g := range slices.Sorted(maps.Keys(doc.DependencyGroups)) {
		var specs []string
		for _, item := range doc.DependencyGroups[g] {
			if s, ok := item.(string); ok {
				specs = append(specs, s)
			}
		}
		if spec, ok := find(specs); ok {
			return spec, true, nil
		}
	}

	poetry := doc.Tool.Poetry
	tables := []map[string]any{poetry.Dependencies, poetry.DevDependencies}
	for _, g := range slices.Sorted(maps.Keys(poetry.Group)) {
		tables = append(tables, poetry.Group[g].Dependencies)
	}
	for _, t := range tables {
		if spec, ok := e.fromPoetry(t); ok {
			return spec, true, nil
		}
	}
	return "", false, nil
}

func (e *Extractor) fromPoetry(table map[string]any) (string, bool) {
	for name, v := range table {
		if !strings.EqualFold(name, e.tool) {
			continue
		}
		var spec string
		switch val := v.(type) {
		case string:
			spec = val
		case map[string]any:
			spec, _ = val["version"].(string)
		}
		spec = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(spec), "=="))
		if spec == "" || spec == "*" {
			return "", false
		}
		e.logger.Infof("Found %s version in pyproject.toml: %s", e.tool, spec)
		return spec, true
	}
	return "", false
}
