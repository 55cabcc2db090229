// Package checksum verifies downloaded ruff artifacts against SHA-256
// digests and maintains the table of known digests shipped with the binary.
package checksum

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/version"
)

//go:embed known_checksums.yaml
var knownChecksums []byte

const fileHeader = "# SHA-256 digests of ruff release artifacts keyed by <arch>-<platform>-<version>.\n" +
	"# Regenerate with: ruff-action checksums update pkg/checksum/known_checksums.yaml\n"

// Key returns the table key for an artifact. A leading "v" on version is
// dropped so that "v0.4.10" and "0.4.10" share an entry.
func Key(arch, platform, v string) string {
	return arch + "-" + platform + "-" + version.Clean(v)
}

// Store is a table of known artifact digests. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	sums map[string]string
}

// Known returns a Store holding the digests embedded at build time.
func Known() *Store {
	s, err := Parse(knownChecksums)
	if err != nil {
		panic(fmt.Sprintf("checksum: embedded table is invalid: %v", err))
	}
	return s
}

// Parse reads a YAML table of key: digest pairs.
func Parse(data []byte) (*Store, error) {
	sums := map[string]string{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &sums); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse checksum table")
		}
	}
	if sums == nil {
		sums = map[string]string{}
	}
	for k, v := range sums {
		if err := errs.ValidateChecksum(v); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "checksum for %s", k)
		}
		sums[k] = strings.ToLower(v)
	}
	return &Store{sums: sums}, nil
}

// Load reads a table from path. A missing file yields an empty table.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{sums: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checksum table: %w", err)
	}
	return Parse(data)
}

// Expected returns the known digest for an artifact.
func (s *Store) Expected(v, platform, arch string) (string, bool) {
	return s.Lookup(Key(arch, platform, v))
}

// Lookup returns the digest stored under key.
func (s *Store) Lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.sums[key]
	return sum, ok
}

// Set stores digest under key.
func (s *Store) Set(key, digest string) {
	s.mu.Lock()
	s.sums[key] = strings.ToLower(digest)
	s.mu.Unlock()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sums)
}

// Marshal renders the table as YAML with keys in sorted order.
func (s *Store) Marshal() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	if len(s.sums) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}
	body, err := yaml.Marshal(s.sums)
	if err != nil {
		return nil, err
	}
	buf.Write(body)
	return buf.Bytes(), nil
}

// Save writes the table to path.
func (s *Store) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("marshal checksum table: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Sum returns the hex-encoded SHA-256 digest of the file at path.
func Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Validate checks the file at path against expected. A mismatch is a
// CHECKSUM_MISMATCH error.
func Validate(path, expected string) error {
	actual, err := Sum(path)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return errs.New(errs.ErrCodeChecksumMismatch,
			"Checksum for %s did not match %s (got %s)", path, expected, actual)
	}
	return nil
}
