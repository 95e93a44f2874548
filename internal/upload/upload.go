// Package upload pins token images and metadata to IPFS.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/config"
)

// ErrMissingKey is returned before any request when the provider key is not configured.
var ErrMissingKey = errors.New("upload api key missing")

const maxTries = 3

// File is an image to pin.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Meta is the user-facing token description written into metadata.json.
type Meta struct {
	Name        string
	Symbol      string
	Description string
	Attributes  []interface{}
}

// Result holds the public URLs of the pinned image and metadata.
type Result struct {
	ImageURL    string
	MetadataURL string
}

// Uploader pins an image and its metadata document.
type Uploader interface {
	Upload(ctx context.Context, file File, meta Meta) (*Result, error)
}

type metadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

type metadata struct {
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	Attributes  []interface{} `json:"attributes"`
	Properties  struct {
		Files []metadataFile `json:"files"`
	} `json:"properties"`
}

func buildMetadata(meta Meta, imageURL, contentType string) ([]byte, error) {
	if contentType == "" {
		contentType = "image/png"
	}
	m := metadata{
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		Description: meta.Description,
		Image:       imageURL,
		Attributes:  meta.Attributes,
	}
	if m.Attributes == nil {
		m.Attributes = []interface{}{}
	}
	m.Properties.Files = []metadataFile{{URI: imageURL, Type: contentType}}
	return json.Marshal(m)
}

// New builds the uploader selected by cfg.Provider.
func New(cfg config.UploadConfig, logger *zap.Logger) (Uploader, error) {
	switch cfg.Provider {
	case "", "pinata":
		return NewPinata(cfg.PinataJWT, cfg.PinataGateway, logger), nil
	case "lighthouse":
		return NewLighthouse(cfg.LighthouseKey, logger), nil
	}
	return nil, fmt.Errorf("unknown upload provider: %s", cfg.Provider)
}

// pinFunc uploads one file and returns its CID.
type pinFunc func(ctx context.Context, f File) (string, error)

// pinBoth uploads the image, then metadata.json pointing at it.
func pinBoth(ctx context.Context, pin pinFunc, gateway string, file File, meta Meta) (*Result, error) {
	imageCID, err := pin(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	imageURL := joinGateway(gateway, imageCID)

	doc, err := buildMetadata(meta, imageURL, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	metaCID, err := pin(ctx, File{Name: "metadata.json", ContentType: "application/json", Data: doc})
	if err != nil {
		return nil, fmt.Errorf("upload metadata: %w", err)
	}
	return &Result{ImageURL: imageURL, MetadataURL: joinGateway(gateway, metaCID)}, nil
}

func joinGateway(gateway, cid string) string {
	return strings.TrimRight(gateway, "/") + "/" + cid
}

// postFile sends a multipart upload with retries on transport errors and 5xx.
// 4xx responses are not retried.
func postFile(ctx context.Context, hc *http.Client, url, bearer string, f File, extra map[string]string, logger *zap.Logger) ([]byte, error) {
	op := func() ([]byte, error) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		for k, v := range extra {
			if err := w.WriteField(k, v); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, backoff.Permanent(err)
		}
		if err := w.Close(); err != nil {
			return nil, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+bearer)

		resp, err := hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(data))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(data)))
		}
		return data, nil
	}

	start := time.Now()
	data, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTries),
	)
	logger.Debug("Upload finished",
		zap.String("file", f.Name),
		zap.Int("bytes", len(f.Data)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	return data, err
}
