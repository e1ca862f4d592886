package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}(\.[\pL\pN]+)$`)

func TestNewName(t *testing.T) {
	tests := []struct {
		original string
		ext      string
	}{
		{"photo.png", ".png"},
		{"dir/sub/photo.jpeg", ".jpeg"},
		{`C:\pics\photo.gif`, ".gif"},
		{"dîner.jpég", ".jpég"},
		{"scan.JPG", ".JPG"},
		{"noext", DefaultExt},
		{"", DefaultExt},
		{`photo.p\ng`, DefaultExt},
		{"photo.p ng", DefaultExt},
		{"photo.abcdefghijklmnopq", DefaultExt},
	}
	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			name := NewName(tt.original)
			assert.Regexp(t, uuidName, name)
			assert.True(t, strings.HasSuffix(name, tt.ext), name)
		})
	}
	assert.NotEqual(t, NewName("a.png"), NewName("a.png"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("0b9c.png"))
	for _, bad := range []string{"", ".", "..", "../etc/passwd", "a/b.png", `a\b.png`, "..png"} {
		assert.ErrorIs(t, ValidateName(bad), ErrInvalidName, bad)
	}
}

func TestURL(t *testing.T) {
	assert.Equal(t, "/uploads/x.png", URL("x.png"))
}

func TestDisk_SaveAndOpen(t *testing.T) {
	d, err := NewDisk(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	ctx := context.Background()
	content := []byte("\x89PNG fake image bytes")

	require.NoError(t, d.Save(ctx, "a.png", bytes.NewReader(content), int64(len(content)), "image/png"))

	rc, info, err := d.Open(ctx, "a.png")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "image/png", info.ContentType)
}

func TestDisk_SaveNeverOverwrites(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.Save(ctx, "a.png", strings.NewReader("first"), -1, ""))
	assert.Error(t, d.Save(ctx, "a.png", strings.NewReader("second"), -1, ""))

	got, err := os.ReadFile(filepath.Join(d.Dir(), "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
}

func TestDisk_OpenMissing(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	_, _, err = d.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = d.Open(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestDisk_Reset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	d, err := NewDisk(dir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, d.Save(ctx, "a.png", strings.NewReader("x"), -1, ""))

	require.NoError(t, d.Reset(ctx))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		endpoint string
		secure   bool
		wantErr  bool
	}{
		{raw: "minio:9000", endpoint: "minio:9000"},
		{raw: "http://minio:9000", endpoint: "minio:9000"},
		{raw: "https://s3.example.com/", endpoint: "s3.example.com", secure: true},
		{raw: "https://s3.example.com/bucket", wantErr: true},
		{raw: "  ", wantErr: true},
	}
	for _, tt := range tests {
		endpoint, secure, err := normaliseEndpoint(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.endpoint, endpoint)
		assert.Equal(t, tt.secure, secure)
	}
}

func TestNewMinio_IncompleteConfig(t *testing.T) {
	_, err := NewMinio(context.Background(), "minio:9000", "", "", "uploads")
	assert.Error(t, err)
}
