// Package artifact downloads, verifies, extracts and caches ruff release
// artifacts.
//
// Ruff's release assets changed shape over time. A [Layout] records those
// changes as two ordered tables of epochs:
//
//   - naming: up to 0.1.7 tags carry a "v" prefix and artifacts are named
//     ruff-<arch>-<platform>; from 0.1.8 to 0.4.10 the artifact name also
//     carries the version; after 0.4.10 the prefix and the version suffix
//     are both gone.
//   - extraction: from 0.5.0 tar archives wrap the binary in a directory
//     named after the artifact. Windows zip archives never do.
//
// [Acquirer] runs the full install of one version: describe, download
// through the retrier, verify the checksum, extract, and store the result
// in the tool cache.
package artifact
