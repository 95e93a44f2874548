// internal/api/mint.go
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
)

// AuthHeader carries the launchpad auth token.
const AuthHeader = "ray-token"

// File is an optional image attached to a mint request.
type File struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// MintForm is the multipart body of the mint creation endpoints.
type MintForm struct {
	Name              string
	Ticker            string
	Description       string
	Wallet            string
	Decimals          uint8
	Supply            uint64
	TotalSellA        uint64
	TotalFundRaisingB uint64
	TotalLockedAmount uint64
	CliffPeriod       uint64
	UnlockPeriod      uint64
	PlatformID        string
	MigrateType       string
	CfToken           string // только для mint-info
	ConfigID          string

	Website  string
	Twitter  string
	Telegram string

	File *File
}

// encode writes the form in the field order the mint host expects.
func (f MintForm) encode(withCfToken bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	migrate := f.MigrateType
	if migrate == "" {
		migrate = "amm"
	}
	fields := [][2]string{
		{"name", f.Name},
		{"ticker", f.Ticker},
		{"description", f.Description},
		{"wallet", f.Wallet},
		{"decimals", strconv.Itoa(int(f.Decimals))},
		{"supply", u(f.Supply)},
		{"totalSellA", u(f.TotalSellA)},
		{"totalFundRaisingB", u(f.TotalFundRaisingB)},
		{"totalLockedAmount", u(f.TotalLockedAmount)},
		{"cliffPeriod", u(f.CliffPeriod)},
		{"unlockPeriod", u(f.UnlockPeriod)},
		{"platformId", f.PlatformID},
		{"migrateType", migrate},
	}
	if withCfToken {
		fields = append(fields, [2]string{"cfToken", f.CfToken})
	}
	fields = append(fields, [2]string{"configId", f.ConfigID})
	for _, opt := range [][2]string{{"website", f.Website}, {"twitter", f.Twitter}, {"telegram", f.Telegram}} {
		if opt[1] != "" {
			fields = append(fields, opt)
		}
	}

	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}

	if f.File != nil && f.File.Data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.File.Name))
		ct := f.File.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.File.Data); err != nil {
			return nil, "", fmt.Errorf("copy file: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// CreateMintInfo registers mint metadata for a user supplied mint and returns its address.
func (c *Client) CreateMintInfo(ctx context.Context, token string, form MintForm) (string, error) {
	u := c.URLs()
	var out createdMint
	if err := c.postForm(ctx, u.MintHost+u.CreateMintInfo, token, form, true, &out); err != nil {
		return "", fmt.Errorf("create mint info: %w", err)
	}
	return out.Mint, nil
}

// CreateRandomMint asks the mint host for a vanity mint and stores the metadata.
func (c *Client) CreateRandomMint(ctx context.Context, token string, form MintForm) (*RandomMint, error) {
	u := c.URLs()
	var out RandomMint
	if err := c.postForm(ctx, u.MintHost+u.RandomMint, token, form, false, &out); err != nil {
		return nil, fmt.Errorf("create random mint: %w", err)
	}
	return &out, nil
}

func (c *Client) postForm(ctx context.Context, url, token string, form MintForm, withCfToken bool, out interface{}) error {
	body, contentType, err := form.encode(withCfToken)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(AuthHeader, token)
	return c.do(req, out)
}
