// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigJSON = `{
    "license": "test-license-key",
    "rpc_list": [
        "https://api.mainnet-beta.solana.com",
        "https://rpc.ankr.com/solana"
    ],
    "mint_host": "https://mint.example.com",
    "platform_ids": ["8pCtbn9iatQ8493mDQax4xfEUjhoVBpUWYVQoRU18333"],
    "debug_logging": true,
    "retries": 5
}`

var invalidConfigJSON = `{
    "rpc_list": ["ftp://bad.example.com"],
    "retries": -1
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "Valid config",
			content: validConfigJSON,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "test-license-key", cfg.License)
				assert.Len(t, cfg.RPCList, 2)
				assert.Equal(t, "https://mint.example.com", cfg.MintHost)
				assert.Equal(t, []string{"8pCtbn9iatQ8493mDQax4xfEUjhoVBpUWYVQoRU18333"}, cfg.PlatformIDs)
				assert.Equal(t, 5, cfg.Retries)
				// незаданные ключи берутся из значений по умолчанию
				assert.Equal(t, DefaultAuthHost, cfg.AuthHost)
				assert.Equal(t, DefaultTxValidationMode, cfg.TxValidation.Mode)
			},
		},
		{
			name:    "Invalid config",
			content: invalidConfigJSON,
			wantErr: true,
		},
		{
			name:    "Empty platform ids",
			content: `{"platform_ids": []}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultMintHost, cfg.MintHost)
	assert.Equal(t, DefaultPlatformID, cfg.PlatformID)
	assert.Equal(t, DefaultPlatformIDs, cfg.PlatformIDs)
	require.Len(t, cfg.PlatformSuffixRules, 1)
	assert.Equal(t, "bonk", cfg.PlatformSuffixRules[0].Suffix)
	assert.Equal(t, "pinata", cfg.Upload.Provider)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("BIRTHPAD_RPC_LIST", "https://one.example.com, https://two.example.com")
	t.Setenv("BIRTHPAD_LICENSE", "env-license")

	cfg, err := LoadConfig(writeConfig(t, validConfigJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://one.example.com", "https://two.example.com"}, cfg.RPCList)
	assert.Equal(t, "env-license", cfg.License)
}

func TestRemoteValidationRequiresURL(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"tx_validation": {"mode": "remote"}}`))
	assert.Error(t, err)
}
