package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// fileStore keeps objects under a local directory. Writes go to a temp
// file first so readers never see a partial object.
type fileStore struct {
	base         string
	publicPrefix string
}

func openFile(_ context.Context, c Config) (Store, error) {
	if err := os.MkdirAll(c.BaseDir, 0o755); err != nil {
		return nil, err
	}
	return &fileStore{base: c.BaseDir, publicPrefix: "/archive/"}, nil
}

func (s *fileStore) path(key string) (string, error) {
	key = sanitizeKey(key)
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	return filepath.Join(s.base, filepath.FromSlash(key)), nil
}

func (s *fileStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *fileStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotExist)
	}
	return f, err
}

func (s *fileStore) SignedURL(_ context.Context, key string, method string, _ time.Duration) (string, error) {
	if method != "" && method != "GET" {
		return "", fmt.Errorf("file driver: %s not supported", method)
	}
	u := url.URL{Path: s.publicPrefix + sanitizeKey(key)}
	return u.String(), nil
}

func (s *fileStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
