package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// metaSuffix names the JSON sidecar stored next to each blob.
const metaSuffix = ".meta.json"

// FileCache stores rendered artifacts on disk for CLI use. Each entry is a
// raw blob named by key hash plus a JSON sidecar carrying expiry metadata.
// Blobs keep their natural extension, so a cached SVG or PNG can be opened
// straight out of the cache directory.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based artifact cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// artifactMeta is the sidecar metadata for one cached artifact.
type artifactMeta struct {
	Ext       string    `json:"ext"`
	Size      int       `json:"size"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get retrieves an artifact. Expired or corrupt entries are removed and
// reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	base := c.basePath(key)

	meta, err := c.readMeta(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		// Unreadable sidecar - drop the entry and treat as miss.
		c.removeEntry(base, meta.Ext)
		return nil, false, nil
	}

	if !meta.ExpiresAt.IsZero() && time.Now().After(meta.ExpiresAt) {
		c.removeEntry(base, meta.Ext)
		return nil, false, nil
	}

	data, err := os.ReadFile(base + meta.Ext)
	if err != nil {
		if os.IsNotExist(err) {
			// Blob vanished from under its sidecar.
			c.removeEntry(base, meta.Ext)
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set stores an artifact. The blob extension is sniffed from the content so
// svg, png and dot artifacts land with usable filenames.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	base := c.basePath(key)
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return err
	}

	// Drop any previous blob; a re-render may change the extension.
	if old, err := c.readMeta(base); err == nil {
		_ = os.Remove(base + old.Ext)
	}

	meta := artifactMeta{
		Ext:      sniffExt(data),
		Size:     len(data),
		StoredAt: time.Now(),
	}
	if ttl > 0 {
		meta.ExpiresAt = time.Now().Add(ttl)
	}

	if err := os.WriteFile(base+meta.Ext, data, 0644); err != nil {
		return err
	}
	metaRaw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(base+metaSuffix, metaRaw, 0644)
}

// Delete removes an artifact and its sidecar. Deleting a missing key is not
// an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	base := c.basePath(key)
	meta, err := c.readMeta(base)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	c.removeEntry(base, meta.Ext)
	return nil
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// basePath converts a cache key to a blob path without extension.
// The first 2 hash chars form a subdirectory so no single dir grows large.
func (c *FileCache) basePath(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:])
}

func (c *FileCache) readMeta(base string) (artifactMeta, error) {
	var meta artifactMeta
	raw, err := os.ReadFile(base + metaSuffix)
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(raw, &meta)
	return meta, err
}

func (c *FileCache) removeEntry(base, ext string) {
	_ = os.Remove(base + metaSuffix)
	if ext != "" {
		_ = os.Remove(base + ext)
	}
}

// sniffExt picks a filename extension from the artifact bytes.
func sniffExt(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return ".png"
	case bytes.Contains(head, []byte("<svg")):
		return ".svg"
	case bytes.HasPrefix(bytes.TrimSpace(head), []byte("digraph")):
		return ".dot"
	default:
		return ".bin"
	}
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
