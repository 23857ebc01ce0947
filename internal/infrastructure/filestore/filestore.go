package filestore

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard/internal/domain/fault"
)

// Store saves uploaded chat attachments on local disk. Each file gets a
// random name; the original name survives only in the message metadata.
type Store struct {
	dir      string
	maxBytes int64
	baseURL  string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string, maxBytes int64, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Saved describes a stored attachment.
type Saved struct {
	URL  string
	Size int64
}

// Save writes the upload to disk and returns its public URL. Rejects
// uploads over the size limit.
func (s *Store) Save(originalName string, r io.Reader) (*Saved, error) {
	name := uuid.New().String() + sanitizedExt(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	if n > s.maxBytes {
		_ = os.Remove(path)
		return nil, fault.Newf(fault.KindInvalid, "file exceeds the %d byte limit", s.maxBytes)
	}
	return &Saved{URL: s.baseURL + "/" + name, Size: n}, nil
}

// Dir returns the directory files are stored in, for static serving.
func (s *Store) Dir() string {
	return s.dir
}

func sanitizedExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
