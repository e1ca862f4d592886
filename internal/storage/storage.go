// Package storage keeps uploaded photos under generated unique names.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultExt is used when the uploaded file name carries no extension.
const DefaultExt = ".jpg"

var (
	// ErrNotFound is returned when no upload exists under a name.
	ErrNotFound = errors.New("upload not found")
	// ErrInvalidName is returned for names that could escape the upload store.
	ErrInvalidName = errors.New("invalid upload name")
)

// Info describes a stored upload.
type Info struct {
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Uploads is a store of immutable upload files.
type Uploads interface {
	// Save writes r under name. Size may be -1 when unknown.
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	// Open returns the content stored under name.
	Open(ctx context.Context, name string) (io.ReadCloser, Info, error)
	// Reset removes every upload and leaves an empty store behind.
	Reset(ctx context.Context) error
}

var safeExt = regexp.MustCompile(`^\.[\pL\pN]{1,16}$`)

// NewName returns a random unique name keeping the extension of original.
func NewName(original string) string {
	ext := filepath.Ext(path.Base(filepath.ToSlash(original)))
	if !safeExt.MatchString(ext) {
		ext = DefaultExt
	}
	return uuid.NewString() + ext
}

// URL returns the retrieval path for an upload name.
func URL(name string) string {
	return "/uploads/" + name
}

// ValidateName rejects names that are empty or reach outside the store.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrInvalidName
	}
	return nil
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
