package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/astral-sh/ruff-action/pkg/integrations"
	"github.com/astral-sh/ruff-action/pkg/retry"
)

// DefaultDownloadPolicy is the API retry policy with room for a full archive
// transfer in each attempt.
func DefaultDownloadPolicy() retry.Policy {
	return retry.DefaultPolicy().WithTimeout(2 * time.Minute)
}

// Downloader fetches release assets into temporary files.
type Downloader struct {
	client  *integrations.Client
	retrier *retry.Retrier
	tempDir string
}

// NewDownloader creates a Downloader. When token is set it is sent as a
// bearer token. Files are written to tempDir, or os.TempDir() when empty.
func NewDownloader(client *integrations.Client, retrier *retry.Retrier, tempDir string) *Downloader {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Downloader{client: client, retrier: retrier, tempDir: tempDir}
}

// Policy returns the retry policy downloads run under.
func (d *Downloader) Policy() retry.Policy { return d.retrier.Policy() }

// NewAssetClient returns a transport for release asset downloads.
func NewAssetClient(token string) *integrations.Client {
	headers := map[string]string{"Accept": "application/octet-stream"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return integrations.NewClient(nil, "", 0, headers)
}

// Download fetches url into a new uuid-named file and returns its path.
// Every attempt writes its own file; failed attempts leave nothing behind.
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(d.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	return retry.Value(ctx, d.retrier, "download "+url, func(ctx context.Context) (string, error) {
		return d.downloadOnce(ctx, url)
	})
}

func (d *Downloader) downloadOnce(ctx context.Context, url string) (string, error) {
	path := filepath.Join(d.tempDir, uuid.NewString())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(path)
		}
	}()

	if _, err := d.client.Download(ctx, url, nil, f); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	ok = true
	return path, nil
}
