package toolcache

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/version"
)

const completeSuffix = ".complete"

// Store is a tool cache rooted at a directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root. The directory is created lazily.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// DefaultRoot returns RUNNER_TOOL_CACHE when set, otherwise a per-user
// directory under $XDG_CACHE_HOME or ~/.cache.
func DefaultRoot() string {
	if dir := os.Getenv("RUNNER_TOOL_CACHE"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "ruff-action", "tools")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "ruff-action", "tools")
	}
	return filepath.Join(os.TempDir(), "ruff-action", "tools")
}

func (s *Store) versionDir(tool, v string) string {
	return filepath.Join(s.root, tool, v)
}

func (s *Store) isComplete(tool, v, arch string) bool {
	dir := s.versionDir(tool, v)
	if fi, err := os.Stat(filepath.Join(dir, arch)); err != nil || !fi.IsDir() {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, arch+completeSuffix))
	return err == nil
}

// FindAllVersions lists the cached versions of tool that have a complete
// entry for arch, in directory order.
func (s *Store) FindAllVersions(tool, arch string) []string {
	entries, err := os.ReadDir(filepath.Join(s.root, tool))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && s.isComplete(tool, e.Name(), arch) {
			out = append(out, e.Name())
		}
	}
	return out
}

// EvaluateVersions returns the greatest of versions satisfying spec as a
// semver range, or "" when none does.
func EvaluateVersions(versions []string, spec string) string {
	return version.EvaluateSemver(versions, spec)
}

// Find returns the directory of the cached entry matching versionSpec and
// arch, or "" when there is none. A non-explicit spec is evaluated against
// the cached versions first.
func (s *Store) Find(tool, versionSpec, arch string) string {
	if tool == "" || versionSpec == "" || arch == "" {
		return ""
	}
	if !version.IsExplicit(versionSpec) {
		versionSpec = EvaluateVersions(s.FindAllVersions(tool, arch), versionSpec)
		if versionSpec == "" {
			return ""
		}
	}
	v := version.Clean(versionSpec)
	if !s.isComplete(tool, v, arch) {
		return ""
	}
	return filepath.Join(s.versionDir(tool, v), arch)
}

// CacheDir copies the contents of src into the entry for (tool, version,
// arch) and returns the entry directory. An existing entry is replaced.
// The marker is written only after the copy is in place.
func (s *Store) CacheDir(src, tool, v, arch string) (string, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidPath, err, "cache source %s", src)
	}
	if !fi.IsDir() {
		return "", errs.New(errs.ErrCodeInvalidPath, "cache source %s is not a directory", src)
	}

	v = version.Clean(v)
	if v == "" {
		return "", errs.New(errs.ErrCodeInvalidInput, "cannot cache %s without a version", tool)
	}
	vdir := s.versionDir(tool, v)
	if err := os.MkdirAll(vdir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	dest := filepath.Join(vdir, arch)
	marker := dest + completeSuffix
	if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove marker: %w", err)
	}

	tmp := filepath.Join(vdir, "."+arch+"-"+uuid.NewString())
	if err := copyTree(src, tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	if err := os.RemoveAll(dest); err != nil {
		_ = os.RemoveAll(tmp)
		return "", fmt.Errorf("remove old entry: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.RemoveAll(tmp)
		return "", fmt.Errorf("move entry: %w", err)
	}
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return "", fmt.Errorf("write marker: %w", err)
	}
	return dest, nil
}

// Entry is a cached tool version.
type Entry struct {
	Tool    string
	Version string
	Arch    string
	Path    string
}

// List returns every complete entry in the store, sorted by tool and then
// newest version first.
func (s *Store) List() ([]Entry, error) {
	tools, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, t := range tools {
		if !t.IsDir() {
			continue
		}
		versions, err := os.ReadDir(filepath.Join(s.root, t.Name()))
		if err != nil {
			continue
		}
		var names []string
		for _, v := range versions {
			if v.IsDir() {
				names = append(names, v.Name())
			}
		}
		for _, v := range sortVersions(names) {
			archs, _ := os.ReadDir(s.versionDir(t.Name(), v))
			for _, a := range archs {
				if a.IsDir() && s.isComplete(t.Name(), v, a.Name()) {
					out = append(out, Entry{
						Tool:    t.Name(),
						Version: v,
						Arch:    a.Name(),
						Path:    filepath.Join(s.versionDir(t.Name(), v), a.Name()),
					})
				}
			}
		}
	}
	return out, nil
}

// sortVersions orders semantic versions newest first, followed by any other
// names alphabetically.
func sortVersions(names []string) []string {
	sorted := version.Sort(names)
	seen := make(map[string]bool, len(sorted))
	for _, n := range sorted {
		seen[n] = true
	}
	var rest []string
	for _, n := range names {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(sorted, rest...)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, info.Mode().Perm())
		default:
			return nil
		}
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
