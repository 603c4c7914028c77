package modelcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type fakeDownloader struct {
	DownloadFunc func(ctx context.Context, bucket, key string) ([]byte, error)
}

func (f *fakeDownloader) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	return f.DownloadFunc(ctx, bucket, key)
}

func TestEnsureDownloadsOnceAndReuses(t *testing.T) {
	content := []byte(`{"locale":"en-US","profiles":{"backend":["Go"]}}`)
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(content)
	}))
	defer srv.Close()

	cache := New(t.TempDir(), nil, zap.NewNop())
	artifact := Artifact{
		Name:   "skills-en-US.json",
		Kind:   KindDatapack,
		URL:    srv.URL + "/datapacks/skills-en-US.json",
		SHA256: sha256Hex(content),
	}

	path, err := cache.Ensure(context.Background(), artifact)
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.EqualValues(t, 1, hits.Load())

	again, err := cache.Ensure(context.Background(), artifact)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.EqualValues(t, 1, hits.Load(), "verified cache hit must not refetch")
}

func TestEnsureRejectsDigestMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tampered content"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cache := New(dir, nil, zap.NewNop())
	artifact := Artifact{
		Name:   "model.bin",
		Kind:   KindModel,
		URL:    srv.URL + "/model.bin",
		SHA256: sha256Hex([]byte("expected content")),
	}

	_, err := cache.Ensure(context.Background(), artifact)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")

	_, statErr := os.Stat(filepath.Join(dir, "model.bin"))
	assert.True(t, os.IsNotExist(statErr), "failed download must not land in the cache")
	_, statErr = os.Stat(filepath.Join(dir, "model.bin.partial"))
	assert.True(t, os.IsNotExist(statErr), "partial file must be cleaned up")
}

func TestEnsureRefetchesCorruptedFile(t *testing.T) {
	content := []byte("good artifact bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.bin"), []byte("corrupted"), 0o644))

	cache := New(dir, nil, zap.NewNop())
	path, err := cache.Ensure(context.Background(), Artifact{
		Name:   "model.bin",
		Kind:   KindModel,
		URL:    srv.URL + "/model.bin",
		SHA256: sha256Hex(content),
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestEnsureFetchesS3Artifacts(t *testing.T) {
	content := []byte(`{"locale":"en-US","profiles":{"data":["Python"]}}`)
	var gotBucket, gotKey string
	objects := &fakeDownloader{
		DownloadFunc: func(ctx context.Context, bucket, key string) ([]byte, error) {
			gotBucket, gotKey = bucket, key
			return content, nil
		},
	}

	cache := New(t.TempDir(), objects, zap.NewNop())
	path, err := cache.Ensure(context.Background(), Artifact{
		Name:   "skills-en-US.json",
		Kind:   KindDatapack,
		URL:    "s3://resume-models/datapacks/skills-en-US.json",
		SHA256: sha256Hex(content),
	})
	require.NoError(t, err)

	assert.Equal(t, "resume-models", gotBucket)
	assert.Equal(t, "datapacks/skills-en-US.json", gotKey)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestEnsureS3RequiresDownloader(t *testing.T) {
	cache := New(t.TempDir(), nil, zap.NewNop())
	_, err := cache.Ensure(context.Background(), Artifact{
		Name: "skills-en-US.json",
		URL:  "s3://bucket/datapacks/skills-en-US.json",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no object storage")
}

func TestPrefetchFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("fine"))
	}))
	defer srv.Close()

	cache := New(t.TempDir(), nil, zap.NewNop())
	err := cache.Prefetch(context.Background(), []Artifact{
		{Name: "ok.bin", URL: srv.URL + "/ok"},
		{Name: "broken.bin", URL: srv.URL + "/broken"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.bin")
}

func TestArtifactValidate(t *testing.T) {
	cases := []struct {
		name     string
		artifact Artifact
		wantErr  bool
	}{
		{"https ok", Artifact{Name: "a.bin", URL: "https://example.com/a.bin"}, false},
		{"s3 ok", Artifact{Name: "a.bin", URL: "s3://bucket/key"}, false},
		{"empty name", Artifact{URL: "https://example.com/a"}, true},
		{"path traversal", Artifact{Name: "../etc/passwd", URL: "https://example.com/a"}, true},
		{"nested name", Artifact{Name: "sub/a.bin", URL: "https://example.com/a"}, true},
		{"bad scheme", Artifact{Name: "a.bin", URL: "ftp://example.com/a"}, true},
		{"s3 missing key", Artifact{Name: "a.bin", URL: "s3://bucket"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.artifact.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	manifest := fmt.Sprintf(`[
		{"name":"skills-en-US.json","kind":"datapack","url":"s3://models/datapacks/skills-en-US.json","sha256":"%s","size":42}
	]`, sha256Hex([]byte("x")))
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	artifacts, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "skills-en-US.json", artifacts[0].Name)
	assert.Equal(t, KindDatapack, artifacts[0].Kind)
	assert.EqualValues(t, 42, artifacts[0].Size)

	_, err = LoadManifest(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))
	_, err = LoadManifest(empty)
	assert.Error(t, err)
}

func TestDefaultManifest(t *testing.T) {
	artifacts := DefaultManifest("en-US", "resume-models")
	require.Len(t, artifacts, 1)
	assert.Equal(t, "skills-en-US.json", artifacts[0].Name)
	assert.Equal(t, "s3://resume-models/datapacks/skills-en-US.json", artifacts[0].URL)
	assert.Equal(t, KindDatapack, artifacts[0].Kind)
}

func TestEnsureS3DownloadError(t *testing.T) {
	objects := &fakeDownloader{
		DownloadFunc: func(ctx context.Context, bucket, key string) ([]byte, error) {
			return nil, errors.New("access denied")
		},
	}
	cache := New(t.TempDir(), objects, zap.NewNop())
	_, err := cache.Ensure(context.Background(), Artifact{Name: "a.bin", URL: "s3://b/k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
