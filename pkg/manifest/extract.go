package manifest

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

const markerWarning = "Environment markers are ignored. ruff is a standalone tool that works independently of Python version."

// Extractor finds a tool's version constraint in dependency declarations.
type Extractor struct {
	tool    string
	pattern *regexp.Regexp
	logger  *log.Logger
}

// NewExtractor creates an Extractor for tool. A nil logger uses log.Default().
func NewExtractor(tool string, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{
		tool:    tool,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(tool) + `\s*([=<>!~^].*)$`),
		logger:  logger,
	}
}

// FromSpec extracts the constraint from a single requirement line such as
// "ruff>=0.14,<1.0 ; python_version >= '3.11'". Lines naming another
// package return false without logging.
func (e *Extractor) FromSpec(line string) (string, bool) {
	return e.fromSpec(line, "requirements file")
}

func (e *Extractor) fromSpec(line, source string) (string, bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimSpace(strings.TrimSuffix(line, `\`))

	m := e.pattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}

	spec := m[1]
	if i := strings.IndexByte(spec, ';'); i >= 0 {
		spec = spec[:i]
		e.logger.Warn(markerWarning)
	}
	spec = strings.TrimSpace(spec)
	spec = strings.TrimSpace(strings.TrimPrefix(spec, "=="))
	if spec == "" {
		return "", false
	}

	e.logger.Infof("Found %s version in %s: %s", e.tool, source, spec)
	return spec, true
}

// FromRequirements scans requirements-style text line by line and returns
// the first constraint for the tool. Comments and pip options are skipped.
func (e *Extractor) FromRequirements(data []byte) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		if spec, ok := e.FromSpec(line); ok {
			return spec, true
		}
	}
	return "", false
}
