package upload

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/config"
)

func TestMissingKeyFailsBeforeRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	p := NewPinata("", "", zaptest.NewLogger(t))
	p.endpoint = srv.URL
	_, err := p.Upload(context.Background(), File{Name: "a.png", Data: []byte("x")}, Meta{Name: "A"})
	assert.ErrorIs(t, err, ErrMissingKey)

	l := NewLighthouse(`""`, zaptest.NewLogger(t))
	l.endpoint = srv.URL
	_, err = l.Upload(context.Background(), File{Name: "a.png", Data: []byte("x")}, Meta{Name: "A"})
	assert.ErrorIs(t, err, ErrMissingKey)

	assert.Zero(t, hits.Load())
}

func TestLighthouseUploadsImageThenMetadata(t *testing.T) {
	var uploads []string
	var metaDoc map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		uploads = append(uploads, hdr.Filename)
		if hdr.Filename == "metadata.json" {
			require.NoError(t, json.Unmarshal(data, &metaDoc))
			_, _ = io.WriteString(w, `{"Name":"metadata.json","Hash":"QmMeta","Size":"10"}`)
			return
		}
		_, _ = io.WriteString(w, `{"Name":"logo.png","Hash":"QmImage","Size":"3"}`)
	}))
	defer srv.Close()

	l := NewLighthouse("key-1", zaptest.NewLogger(t))
	l.endpoint = srv.URL
	res, err := l.Upload(context.Background(),
		File{Name: "logo.png", ContentType: "image/png", Data: []byte("png")},
		Meta{Name: "Birth", Symbol: "BRTH", Description: "d"})
	require.NoError(t, err)

	assert.Equal(t, []string{"logo.png", "metadata.json"}, uploads)
	assert.Equal(t, LighthouseGateway+"/QmImage", res.ImageURL)
	assert.Equal(t, LighthouseGateway+"/QmMeta", res.MetadataURL)

	assert.Equal(t, "Birth", metaDoc["name"])
	assert.Equal(t, res.ImageURL, metaDoc["image"])
	files := metaDoc["properties"].(map[string]interface{})["files"].([]interface{})
	require.Len(t, files, 1)
	assert.Equal(t, "image/png", files[0].(map[string]interface{})["type"])
}

func TestPinataRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "public", r.FormValue("network"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"cid":"bafy123"}}`)
	}))
	defer srv.Close()

	p := NewPinata("jwt", "https://gw.example/ipfs/", zaptest.NewLogger(t))
	p.endpoint = srv.URL
	cid, err := p.pin(context.Background(), File{Name: "a.png", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "bafy123", cid)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPinataDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewPinata("jwt", "", zaptest.NewLogger(t))
	p.endpoint = srv.URL
	_, err := p.pin(context.Background(), File{Name: "a.png", Data: []byte("x")})
	assert.ErrorContains(t, err, "401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewSelectsProvider(t *testing.T) {
	u, err := New(config.UploadConfig{Provider: "lighthouse", LighthouseKey: "k"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &Lighthouse{}, u)

	_, err = New(config.UploadConfig{Provider: "s3"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
