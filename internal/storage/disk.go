package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Disk stores uploads as files in a single directory.
type Disk struct {
	dir string
}

// NewDisk returns a Disk rooted at dir, creating the directory when missing.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the upload directory.
func (d *Disk) Dir() string {
	return d.dir
}

func (d *Disk) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	p := filepath.Join(d.dir, name)
	// O_EXCL: an existing upload is never overwritten
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return fmt.Errorf("close upload: %w", err)
	}
	return nil
}

func (d *Disk) Open(_ context.Context, name string) (io.ReadCloser, Info, error) {
	if err := ValidateName(name); err != nil {
		return nil, Info{}, err
	}
	f, err := os.Open(filepath.Join(d.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Info{}, ErrNotFound
		}
		return nil, Info{}, fmt.Errorf("open upload: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, Info{}, fmt.Errorf("stat upload: %w", err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, Info{}, ErrNotFound
	}
	return f, Info{Size: st.Size(), ContentType: contentTypeOf(name), ModTime: st.ModTime()}, nil
}

func (d *Disk) Reset(_ context.Context) error {
	if err := os.RemoveAll(d.dir); err != nil {
		return fmt.Errorf("remove upload dir: %w", err)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	return nil
}
