// Package modelcache maintains the persistent model artifact cache mounted
// at the cache directory. Artifacts are fetched once, digest-verified and
// reused across restarts, so a warm container starts without network calls.
package modelcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ObjectDownloader fetches s3:// artifacts. *storage.Client satisfies it.
type ObjectDownloader interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

type Cache struct {
	dir     string
	client  *http.Client
	objects ObjectDownloader
	log     *zap.Logger
}

// New builds a cache rooted at dir. objects may be nil when no s3 artifacts
// are expected.
func New(dir string, objects ObjectDownloader, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		dir:     dir,
		client:  &http.Client{Timeout: 5 * time.Minute},
		objects: objects,
		log:     log,
	}
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// Path returns where an artifact lives once cached.
func (c *Cache) Path(a Artifact) string { return filepath.Join(c.dir, a.Name) }

// Ensure returns the local path of an artifact, downloading it first when
// the cached copy is absent or fails verification. Downloads go through a
// .partial file and are renamed into place only after the digest checks
// out, so a crashed fetch never poisons the cache.
func (c *Cache) Ensure(ctx context.Context, a Artifact) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}

	path := c.Path(a)
	if _, err := os.Stat(path); err == nil {
		ok, verr := c.verify(path, a)
		if verr != nil {
			return "", verr
		}
		if ok {
			c.log.Debug("model cache hit", zap.String("artifact", a.Name))
			return path, nil
		}
		c.log.Warn("cached artifact failed verification, refetching", zap.String("artifact", a.Name))
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	start := time.Now()
	body, err := c.fetch(ctx, a)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp := path + ".partial"
	size, digest, err := writeAndHash(tmp, body)
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("download %s: %w", a.Name, err)
	}
	if a.SHA256 != "" && !strings.EqualFold(digest, a.SHA256) {
		os.Remove(tmp)
		return "", fmt.Errorf("digest mismatch for %s: got %s, want %s", a.Name, digest, a.SHA256)
	}
	if a.Size > 0 && size != a.Size {
		os.Remove(tmp)
		return "", fmt.Errorf("size mismatch for %s: got %d, want %d", a.Name, size, a.Size)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize %s: %w", a.Name, err)
	}

	c.log.Info("model artifact cached",
		zap.String("artifact", a.Name),
		zap.String("kind", a.Kind),
		zap.Int64("bytes", size),
		zap.Duration("took", time.Since(start)),
	)
	return path, nil
}

// Prefetch ensures every artifact in the manifest, failing fast on the
// first error so a broken warm-up is visible before the service starts.
func (c *Cache) Prefetch(ctx context.Context, artifacts []Artifact) error {
	for _, a := range artifacts {
		if _, err := c.Ensure(ctx, a); err != nil {
			return fmt.Errorf("prefetch %s: %w", a.Name, err)
		}
	}
	return nil
}

func (c *Cache) fetch(ctx context.Context, a Artifact) (io.ReadCloser, error) {
	u, err := url.Parse(a.URL)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", a.Name, err)
	}

	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", a.URL, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: unexpected status %s", a.URL, resp.Status)
		}
		return resp.Body, nil
	case "s3":
		if c.objects == nil {
			return nil, fmt.Errorf("artifact %s uses s3 but no object storage is configured", a.Name)
		}
		data, err := c.objects.Download(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", a.URL, err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	default:
		return nil, fmt.Errorf("artifact %s: unsupported url scheme %q", a.Name, u.Scheme)
	}
}

// verify reports whether the cached file still matches the manifest entry.
// Without a pinned digest the size is checked; without either, presence is
// enough.
func (c *Cache) verify(path string, a Artifact) (bool, error) {
	if a.SHA256 != "" {
		digest, err := fileSHA256(path)
		if err != nil {
			return false, err
		}
		return strings.EqualFold(digest, a.SHA256), nil
	}
	if a.Size > 0 {
		fi, err := os.Stat(path)
		if err != nil {
			return false, err
		}
		return fi.Size() == a.Size, nil
	}
	return true, nil
}

func writeAndHash(path string, r io.Reader) (int64, string, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, "", err
	}
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func fileSHA256(path string) (string, error) {
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
