package modelcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Artifact kinds. The cache treats them identically; kinds exist so logs
// and manifests stay readable.
const (
	KindDatapack = "datapack"
	KindModel    = "model"
)

// Artifact describes one cacheable file. URL schemes https, http and s3
// are supported; s3 URLs are fetched through the configured object store.
type Artifact struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	URL    string `json:"url"`
	SHA256 string `json:"sha256,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

func (a Artifact) Validate() error {
	if a.Name == "" {
		return errors.New("artifact name is empty")
	}
	if strings.ContainsAny(a.Name, `/\`) || a.Name == "." || a.Name == ".." {
		return fmt.Errorf("artifact name %q must be a plain file name", a.Name)
	}
	u, err := url.Parse(a.URL)
	if err != nil {
		return fmt.Errorf("artifact %s: invalid url: %w", a.Name, err)
	}
	switch u.Scheme {
	case "http", "https":
	case "s3":
		if u.Host == "" || strings.TrimPrefix(u.Path, "/") == "" {
			return fmt.Errorf("artifact %s: s3 url needs bucket and key", a.Name)
		}
	default:
		return fmt.Errorf("artifact %s: unsupported url scheme %q", a.Name, u.Scheme)
	}
	return nil
}

// DatapackName is the conventional artifact name for a locale's skills
// datapack.
func DatapackName(locale string) string {
	return fmt.Sprintf("skills-%s.json", locale)
}

// DefaultManifest lists the artifacts the analyzer needs at runtime: the
// skills datapack for the configured locale, served from the model bucket.
func DefaultManifest(locale, bucket string) []Artifact {
	name := DatapackName(locale)
	return []Artifact{
		{
			Name: name,
			Kind: KindDatapack,
			URL:  fmt.Sprintf("s3://%s/datapacks/%s", bucket, name),
		},
	}
}

// LoadManifest reads a JSON manifest file, used when operators pin exact
// artifact digests instead of relying on the defaults.
func LoadManifest(path string) ([]Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var artifacts []Artifact
	if err := json.Unmarshal(raw, &artifacts); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("manifest %s lists no artifacts", path)
	}
	for _, a := range artifacts {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	return artifacts, nil
}
