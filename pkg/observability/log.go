package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log lines.
// The CLI registers it when running with --verbose.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates LogHooks writing to logger. A nil logger uses log.Default().
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

// Register installs h as the install, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetInstallHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnResolveStart(_ context.Context, request string) {
	h.logger.Debug("resolve start", "request", request)
}

func (h *LogHooks) OnResolveComplete(_ context.Context, request, version string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "request", request, "duration", d, "error", err)
		return
	}
	h.logger.Debug("resolve complete", "request", request, "version", version, "duration", d)
}

func (h *LogHooks) OnAcquireStart(_ context.Context, version, platform, arch string) {
	h.logger.Debug("acquire start", "version", version, "platform", platform, "arch", arch)
}

func (h *LogHooks) OnAcquireComplete(_ context.Context, version, dir string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("acquire failed", "version", version, "duration", d, "error", err)
		return
	}
	h.logger.Debug("acquire complete", "version", version, "dir", dir, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "size", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

var (
	_ InstallHooks = (*LogHooks)(nil)
	_ CacheHooks   = (*LogHooks)(nil)
	_ HTTPHooks    = (*LogHooks)(nil)
)
