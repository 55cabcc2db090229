package manifest

import (
	"os"
	"path/filepath"
	"strings"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

const pyprojectName = "pyproject.toml"

// FromFile reads the manifest at path and returns the tool's constraint.
// Files ending in .toml are parsed as pyproject.toml, anything else as a
// requirements file. Unreadable or malformed files are logged as warnings
// and reported as not found.
func (e *Extractor) FromFile(path string) (string, bool) {
	if err := errs.ValidateManifestFilename(path); err != nil {
		e.logger.Warn("Invalid version file", "path", path, "err", err)
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("Could not read version file", "path", path, "err", err)
		return "", false
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		spec, ok, err := e.FromPyproject(data)
		if err != nil {
			e.logger.Warn("Could not parse version file", "path", path, "err", errs.UserMessage(err))
			return "", false
		}
		return spec, ok
	}
	return e.FromRequirements(data)
}

// FindPyproject looks for pyproject.toml in startDir and its parents, never
// leaving workspaceRoot. An empty workspaceRoot means the working directory;
// when startDir lies outside it, only startDir itself is searched. It
// returns "" when no file is found.
func (e *Extractor) FindPyproject(startDir, workspaceRoot string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	root, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return ""
	}
	if workspaceRoot == "" && !within(dir, root) {
		root = dir
	}

	for {
		candidate := filepath.Join(dir, pyprojectName)
		e.logger.Debug("Checking for pyproject.toml", "path", candidate)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			e.logger.Info("Found pyproject.toml", "path", candidate)
			return candidate
		}
		if dir == root {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		if !within(parent, root) {
			return ""
		}
		dir = parent
	}
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
