package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	LighthouseEndpoint = "https://node.lighthouse.storage/api/v0/add"
	LighthouseGateway  = "https://gateway.lighthouse.storage/ipfs"
)

// Lighthouse pins files on Lighthouse storage.
type Lighthouse struct {
	key      string
	endpoint string
	gateway  string
	client   *http.Client
	logger   *zap.Logger
}

func NewLighthouse(key string, logger *zap.Logger) *Lighthouse {
	// ключ часто копируют из .env вместе с кавычками
	key = strings.Trim(strings.TrimSpace(key), `'"`)
	return &Lighthouse{
		key:      key,
		endpoint: LighthouseEndpoint,
		gateway:  LighthouseGateway,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger.Named("lighthouse"),
	}
}

func (l *Lighthouse) Upload(ctx context.Context, file File, meta Meta) (*Result, error) {
	if l.key == "" {
		return nil, fmt.Errorf("lighthouse: %w", ErrMissingKey)
	}
	return pinBoth(ctx, l.pin, l.gateway, file, meta)
}

func (l *Lighthouse) pin(ctx context.Context, f File) (string, error) {
	data, err := postFile(ctx, l.client, l.endpoint, l.key, f, nil, l.logger)
	if err != nil {
		return "", err
	}
	var resp struct {
		Name string `json:"Name"`
		Hash string `json:"Hash"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.Hash == "" {
		return "", fmt.Errorf("lighthouse upload failed: no CID")
	}
	return resp.Hash, nil
}
