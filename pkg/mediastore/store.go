// Package mediastore hosts synthesized audio files so the telephony provider
// can fetch them over HTTP.
package mediastore

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Store writes audio blobs to a local directory served under baseURL.
type Store struct {
	dir     string
	baseURL string
}

// New creates the directory if needed. baseURL is the public prefix the
// provider will fetch from, e.g. "https://example.com/media".
func New(dir, baseURL string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("media dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put stores data under name and returns its public URL.
func (s *Store) Put(name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if name == "" || name == "." {
		return "", errors.New("invalid media name")
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

// Handler serves the stored files.
func (s *Store) Handler() http.Handler {
	return http.FileServer(http.Dir(s.dir))
}
