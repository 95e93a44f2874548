package upload

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
)

// ReadFile loads an image from disk and sniffs its content type.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// PinMetadata uploads the image at imagePath with meta and returns the
// metadata URI to put on chain.
func PinMetadata(ctx context.Context, u Uploader, imagePath string, meta Meta) (string, error) {
	file, err := ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	res, err := u.Upload(ctx, file, meta)
	if err != nil {
		return "", err
	}
	return res.MetadataURL, nil
}
