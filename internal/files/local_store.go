package files

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps file content on disk under a single root directory.
// Stored names are opaque (random identifier plus sanitized display name)
// and every path is canonicalized and verified to stay inside the root.
type LocalStore struct {
	root string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

// NewStoredName derives an on-disk name for a user-supplied display name.
// The random prefix guarantees uniqueness and keeps the stored name from
// ever equalling a client-controlled path component.
func (s *LocalStore) NewStoredName(displayName string) string {
	return fmt.Sprintf("%s_%s", uuid.New().String(), sanitizeFilename(displayName))
}

// resolve canonicalizes storedName under the root and rejects anything that
// escapes it.
func (s *LocalStore) resolve(storedName string) (string, error) {
	path := filepath.Join(s.root, filepath.Clean("/"+storedName))
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return abs, nil
}

// Write streams content to its final location, hashing as it goes. maxSize
// bounds the accepted byte count; exceeding it aborts and removes the
// partial file. Returns the byte count and sha256 hex digest.
func (s *LocalStore) Write(storedName string, content io.Reader, maxSize int64) (int64, string, error) {
	path, err := s.resolve(storedName)
	if err != nil {
		return 0, "", err
	}

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, "", err
	}

	hasher := sha256.New()
	size, err := io.Copy(dst, io.TeeReader(io.LimitReader(content, maxSize+1), hasher))
	if err != nil {
		dst.Close()
		os.Remove(path)
		return 0, "", err
	}
	if size > maxSize {
		dst.Close()
		os.Remove(path)
		return 0, "", ErrFileTooLarge
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return 0, "", err
	}
	return size, hex.EncodeToString(hasher.Sum(nil)), nil
}

// Read returns the full stored content. The caller verifies the digest
// before serving anything, so no partial delivery is possible.
func (s *LocalStore) Read(storedName string) ([]byte, error) {
	path, err := s.resolve(storedName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrFileNotFound
	}
	return data, err
}

// Remove deletes the stored content, used to roll back a failed upload.
func (s *LocalStore) Remove(storedName string) error {
	path, err := s.resolve(storedName)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Checksum recomputes the sha256 digest of the given bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// sanitizeFilename strips path components and anything outside a small safe
// character set from a user-supplied name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	sanitized := strings.Trim(b.String(), "._")
	if sanitized == "" {
		sanitized = "file"
	}
	return sanitized
}
