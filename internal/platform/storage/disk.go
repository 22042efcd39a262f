// Package storage holds the object store for uploaded book cover images.
// The contract is narrow on purpose: put bytes under a name, remove by
// path, map a stored path to a public URL.
package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects as flat files under a single directory and
// serves them through the router's /covers file server.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes the object and returns the path to store on the book record.
// Names are generated by the caller and never reused, so an existing file
// with the same name is an error rather than something to overwrite.
func (s *DiskStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.New("storage: empty object name")
	}

	dst := filepath.Join(s.dir, name)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	return name, nil
}

// Remove deletes the object. A missing file is not an error; the caller
// only cares that the path is gone.
func (s *DiskStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.dir, filepath.Base(path)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// PublicURL maps a stored path to a browser-reachable URL. It never fails;
// an empty path yields an empty URL and the frontend shows a placeholder.
func (s *DiskStore) PublicURL(path string) string {
	if path == "" {
		return ""
	}
	return s.baseURL + "/" + filepath.Base(path)
}
