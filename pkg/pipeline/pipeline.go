// Package pipeline installs ruff: it turns a version request into a
// concrete release, checks the tool cache and downloads the release on a
// miss.
//
// This package implements the resolve → cache-check → acquire pipeline
// shared by every command. By centralizing it, the install and resolve
// commands agree on how version requests are derived and validated.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: derive the request (explicit, version file, discovered
//     pyproject.toml, or "latest") and resolve it against the release catalog
//  2. Cache check: look for a complete tool cache entry for the version
//  3. Acquire: download, verify, extract and cache the release artifact
//
// # Usage
//
//	runner := pipeline.NewRunner(pipeline.Config{Token: token, Logger: logger})
//	result, err := runner.Execute(ctx, pipeline.Options{Version: ">=0.5"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Version, result.Dir)
package pipeline

import (
	"time"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

// Options describes one install.
type Options struct {
	Version     string // Version request: "latest", explicit version or range
	VersionFile string // Manifest to read the request from
	Checksum    string // Expected SHA-256 of the artifact
	Src         string // Directory to start pyproject.toml discovery from
	Workspace   string // Discovery never leaves this directory

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Request is the version request after manifest lookup.
	Request string

	// Version is the concrete version that was installed or found.
	Version string

	// Dir is the tool cache directory containing the executable.
	Dir string

	Platform string
	Arch     string

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks whether the tool cache already had the version.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ResolveTime time.Duration
	AcquireTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ToolHit bool // Whether the version came from the tool cache
}

// ValidateAndSetDefaults checks the options and applies defaults.
// Supplying both Version and VersionFile is an INVALID_CONFIG error.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Version != "" && o.VersionFile != "" {
		return errs.New(errs.ErrCodeInvalidConfig, "It is not possible to specify both a version and a version-file")
	}
	if err := errs.ValidateVersionRequest(o.Version); err != nil {
		return err
	}
	if err := errs.ValidateChecksum(o.Checksum); err != nil {
		return err
	}
	if o.VersionFile != "" {
		if err := errs.ValidatePath(o.VersionFile); err != nil {
			return err
		}
	}
	if o.Src == "" {
		o.Src = "."
	}
	if err := errs.ValidatePath(o.Src); err != nil {
		return err
	}
	o.validated = true
	return nil
}
