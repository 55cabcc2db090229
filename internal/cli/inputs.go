package cli

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/pipeline"
)

// inputs holds the flags shared by commands that talk to GitHub.
type inputs struct {
	version     string
	versionFile string
	checksum    string
	token       string
	src         string
	args        string
	workspace   string
	toolCache   string
	platform    string
	arch        string
	apiURL      string
	downloadURL string
	cacheTTL    time.Duration
	cacheURL    string
}

// firstEnv returns the value of the first set environment variable in names.
func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// addGitHubFlags registers the flags needed to reach the release catalog.
// Defaults come from the environment a GitHub Actions runner provides.
func (in *inputs) addGitHubFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&in.token, "github-token", firstEnv("INPUT_GITHUB-TOKEN", "INPUT_GITHUB_TOKEN", "GITHUB_TOKEN"), "GitHub token for API requests (env: GITHUB_TOKEN)")
	f.StringVar(&in.apiURL, "api-url", firstEnv("GITHUB_API_URL"), "GitHub API base URL")
	f.DurationVar(&in.cacheTTL, "api-cache-ttl", 0, "cache release listings for this long (0 disables)")
	f.StringVar(&in.cacheURL, "api-cache-url", firstEnv("RUFF_ACTION_CACHE_URL"), "redis URL for a shared API response cache")
}

// addRequestFlags registers the flags that determine the version request.
func (in *inputs) addRequestFlags(cmd *cobra.Command) {
	in.addGitHubFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&in.version, "version", firstEnv("INPUT_VERSION"), `version to install: "latest", an exact version or a range (env: INPUT_VERSION)`)
	f.StringVar(&in.versionFile, "version-file", firstEnv("INPUT_VERSION-FILE", "INPUT_VERSION_FILE"), "pyproject.toml or requirements file to read the version from")
	f.StringVar(&in.src, "src", firstEnv("INPUT_SRC"), "paths passed to ruff; the first is searched for pyproject.toml")
	f.StringVar(&in.workspace, "workspace", firstEnv("GITHUB_WORKSPACE"), "pyproject.toml discovery stops at this directory")
}

// addInstallFlags registers the flags of the install pipeline.
func (in *inputs) addInstallFlags(cmd *cobra.Command) {
	in.addRequestFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&in.checksum, "checksum", firstEnv("INPUT_CHECKSUM"), "expected SHA-256 of the release artifact")
	f.StringVar(&in.toolCache, "tool-cache", firstEnv("RUNNER_TOOL_CACHE"), "tool cache directory")
	f.StringVar(&in.platform, "platform", "", "override the detected platform (e.g. unknown-linux-musl)")
	f.StringVar(&in.arch, "arch", "", "override the detected architecture (e.g. aarch64)")
	args := firstEnv("INPUT_ARGS")
	if args == "" {
		args = "check"
	}
	f.StringVar(&in.args, "args", args, `arguments for the ruff run after install; "" skips it (env: INPUT_ARGS)`)
	f.StringVar(&in.downloadURL, "download-url", "", "base URL for release downloads")
	_ = f.MarkHidden("download-url")
}

// validateURLs checks the endpoint overrides that were given.
func (in *inputs) validateURLs() error {
	for _, u := range []string{in.apiURL, in.downloadURL} {
		if u == "" {
			continue
		}
		if err := errs.ValidateURL(u); err != nil {
			return err
		}
	}
	return nil
}

func (in *inputs) options() pipeline.Options {
	var src string
	if fields := strings.Fields(in.src); len(fields) > 0 {
		src = fields[0]
	}
	return pipeline.Options{
		Version:     in.version,
		VersionFile: in.versionFile,
		Checksum:    in.checksum,
		Src:         src,
		Workspace:   in.workspace,
	}
}
