package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound = errors.New("stored file not found")
	ErrInvalidID    = errors.New("invalid storage id")
)

// FileStore keeps uploaded binaries on disk, one file per storage id, with the
// content type recorded in a sidecar so downloads can be served back with the
// original type.
type FileStore struct {
	Dir           string
	PublicBaseURL string
}

func NewFileStore(dir, publicBaseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &FileStore{
		Dir:           dir,
		PublicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

func (f *FileStore) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.Contains(id, "..") {
		return "", ErrInvalidID
	}
	return filepath.Join(f.Dir, id), nil
}

// Save writes the blob under the given id and returns the number of bytes
// stored.
func (f *FileStore) Save(id, contentType string, r io.Reader) (int64, error) {
	path, err := f.path(id)
	if err != nil {
		return 0, err
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file %s: %w", id, err)
	}
	defer file.Close()

	n, err := io.Copy(file, r)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("write file %s: %w", id, err)
	}

	if contentType != "" {
		if err := os.WriteFile(path+".ctype", []byte(contentType), 0o644); err != nil {
			os.Remove(path)
			return 0, fmt.Errorf("record content type for %s: %w", id, err)
		}
	}
	return n, nil
}

// Open returns the stored file and its recorded content type. The caller
// closes the file.
func (f *FileStore) Open(id string) (*os.File, string, error) {
	path, err := f.path(id)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, "", ErrFileNotFound
	}
	if err != nil {
		return nil, "", err
	}

	contentType := "application/octet-stream"
	if raw, err := os.ReadFile(path + ".ctype"); err == nil && len(raw) > 0 {
		contentType = string(raw)
	}
	return file, contentType, nil
}

// URL resolves a storage id into the public URL clients can render.
func (f *FileStore) URL(id string) string {
	return f.PublicBaseURL + "/" + id
}

// Exists reports whether a blob is stored under the id.
func (f *FileStore) Exists(id string) (bool, error) {
	path, err := f.path(id)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the blob and its content-type sidecar. Deleting a missing
// blob is a no-op.
func (f *FileStore) Delete(id string) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(path + ".ctype"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
