package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormatMessage(t *testing.T) {
	sig := "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"

	out := FormatMessage("Transaction sent", []zap.Field{zap.String("signature", sig)})
	assert.Contains(t, out, "5VERv8NM...diSZkQUW")

	out = FormatMessage("Using platformId", []zap.Field{zap.String("platform_id", "FEkF8SrSckk5GkfbmtcCbuuifpTKkw6mrSNowwB8aQe3")})
	assert.Contains(t, out, "FEkF...aQe3")

	assert.Equal(t, "nothing special", FormatMessage("nothing special", nil))
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "birthpad.log")

	log, err := New(Options{File: path})
	require.NoError(t, err)

	log.Named("launchpad").Info("Mint created", zap.String("mint", "abc"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Mint created"`)
	assert.Contains(t, string(data), `"logger":"launchpad"`)
}

func TestNewWithoutCoresIsNop(t *testing.T) {
	log, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.ErrorLevel))
}
