// Package blobstore implements an on-disk content-addressed store for
// artwork bytes. Objects are keyed by the SHA-256 digest of their content,
// so two identical images occupy a single file regardless of how many
// games reference them.
package blobstore

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Digest returns the content address for a byte payload: SHA-256 encoded
// with the unpadded URL-safe base64 alphabet, so the digest doubles as a
// filename and URL path segment.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Store is a directory of content-addressed files. Objects live at
// <root>/<digest[:2]>/<digest> to keep directory fan-out manageable.
type Store struct {
	root string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob store root is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob store root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Put writes data into the store and returns its digest. Writing bytes
// that are already present succeeds without touching the existing object;
// the write is temp-file-then-rename so readers never observe a partial
// object.
func (s *Store) Put(data []byte) (string, error) {
	digest := Digest(data)
	dest := s.pathFor(digest)

	if _, err := os.Stat(dest); err == nil {
		return digest, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".put-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp blob: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to close blob: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to commit blob: %w", err)
	}

	return digest, nil
}

// Has reports whether an object with the given digest is stored.
func (s *Store) Has(digest string) bool {
	if !validDigest(digest) {
		return false
	}
	_, err := os.Stat(s.pathFor(digest))
	return err == nil
}

// Open returns a reader over the object with the given digest.
func (s *Store) Open(digest string) (io.ReadCloser, error) {
	if !validDigest(digest) {
		return nil, fmt.Errorf("invalid digest %q", digest)
	}
	f, err := os.Open(s.pathFor(digest))
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", digest, err)
	}
	return f, nil
}

// Size returns the stored object's size in bytes.
func (s *Store) Size(digest string) (int64, error) {
	if !validDigest(digest) {
		return 0, fmt.Errorf("invalid digest %q", digest)
	}
	info, err := os.Stat(s.pathFor(digest))
	if err != nil {
		return 0, fmt.Errorf("failed to stat blob %s: %w", digest, err)
	}
	return info.Size(), nil
}

func (s *Store) pathFor(digest string) string {
	return filepath.Join(s.root, digest[:2], digest)
}

// validDigest rejects strings that could escape the store directory or
// are too short to shard. Digests are produced by Digest and contain only
// URL-safe base64 characters.
func validDigest(digest string) bool {
	if len(digest) < 3 {
		return false
	}
	for i := 0; i < len(digest); i++ {
		c := digest[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
