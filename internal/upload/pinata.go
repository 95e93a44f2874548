package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	PinataEndpoint       = "https://uploads.pinata.cloud/v3/files"
	DefaultPinataGateway = "https://gateway.pinata.cloud/ipfs/"
)

// Pinata pins files through the Pinata v3 files API.
type Pinata struct {
	jwt      string
	gateway  string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewPinata(jwt, gateway string, logger *zap.Logger) *Pinata {
	if gateway == "" {
		gateway = DefaultPinataGateway
	}
	return &Pinata{
		jwt:      jwt,
		gateway:  gateway,
		endpoint: PinataEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger.Named("pinata"),
	}
}

func (p *Pinata) Upload(ctx context.Context, file File, meta Meta) (*Result, error) {
	if p.jwt == "" {
		return nil, fmt.Errorf("pinata: %w", ErrMissingKey)
	}
	return pinBoth(ctx, p.pin, p.gateway, file, meta)
}

func (p *Pinata) pin(ctx context.Context, f File) (string, error) {
	data, err := postFile(ctx, p.client, p.endpoint, p.jwt, f, map[string]string{"network": "public"}, p.logger)
	if err != nil {
		return "", err
	}
	var resp struct {
		Data struct {
			CID string `json:"cid"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.Data.CID == "" {
		return "", fmt.Errorf("pinata upload failed: no CID")
	}
	return resp.Data.CID, nil
}
