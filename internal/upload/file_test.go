package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureUploader struct {
	file File
	meta Meta
}

func (c *captureUploader) Upload(_ context.Context, file File, meta Meta) (*Result, error) {
	c.file, c.meta = file, meta
	return &Result{ImageURL: "ipfs://img", MetadataURL: "ipfs://meta"}, nil
}

func TestPinMetadataReadsImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	png := []byte("\x89PNG\r\n\x1a\n0000")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	u := &captureUploader{}
	uri, err := PinMetadata(context.Background(), u, path, Meta{Name: "Birth", Symbol: "BRTH"})
	require.NoError(t, err)

	assert.Equal(t, "ipfs://meta", uri)
	assert.Equal(t, "logo.png", u.file.Name)
	assert.Equal(t, "image/png", u.file.ContentType)
	assert.Equal(t, "BRTH", u.meta.Symbol)
}

func TestPinMetadataMissingFile(t *testing.T) {
	_, err := PinMetadata(context.Background(), &captureUploader{}, filepath.Join(t.TempDir(), "nope.png"), Meta{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
