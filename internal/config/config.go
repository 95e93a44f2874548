// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// SuffixRule prepends Candidate to the platform list when a mint address ends with Suffix.
type SuffixRule struct {
	Suffix    string `mapstructure:"suffix"`
	Candidate string `mapstructure:"candidate"`
}

type UploadConfig struct {
	Provider      string `mapstructure:"provider"` // pinata | lighthouse
	PinataJWT     string `mapstructure:"pinata_jwt"`
	PinataGateway string `mapstructure:"pinata_gateway"`
	LighthouseKey string `mapstructure:"lighthouse_key"`
}

type TxValidationConfig struct {
	Mode      string `mapstructure:"mode"` // bypass | remote
	CheckURL  string `mapstructure:"check_url"`
	ExtendURL string `mapstructure:"extend_url"`
}

type KeygenConfig struct {
	AccountID    string `mapstructure:"account_id"`
	ProductID    string `mapstructure:"product_id"`
	ProductToken string `mapstructure:"product_token"`
}

type Config struct {
	License             string             `mapstructure:"license"`
	RPCList             []string           `mapstructure:"rpc_list"`
	BaseHost            string             `mapstructure:"base_host"`
	AuthHost            string             `mapstructure:"auth_host"`
	CommentHost         string             `mapstructure:"comment_host"`
	HistoryHost         string             `mapstructure:"history_host"`
	MintHost            string             `mapstructure:"mint_host"`
	LaunchpadProgram    string             `mapstructure:"launchpad_program"`
	PlatformID          string             `mapstructure:"platform_id"`
	PlatformIDs         []string           `mapstructure:"platform_ids"`
	PlatformSuffixRules []SuffixRule       `mapstructure:"platform_suffix_rules"`
	WalletPath          string             `mapstructure:"wallet_path"`
	SettingsPath        string             `mapstructure:"settings_path"`
	Locale              string             `mapstructure:"locale"`
	DebugLogging        bool               `mapstructure:"debug_logging"`
	LogFile             string             `mapstructure:"log_file"`
	SentryDSN           string             `mapstructure:"sentry_dsn"`
	PostgresURL         string             `mapstructure:"postgres_url"`
	MetricsAddr         string             `mapstructure:"metrics_addr"`
	Retries             int                `mapstructure:"retries"`
	Upload              UploadConfig       `mapstructure:"upload"`
	TxValidation        TxValidationConfig `mapstructure:"tx_validation"`
	Keygen              KeygenConfig       `mapstructure:"keygen"`
}

const (
	DefaultBaseHost         = "https://api-v3.raydium.io"
	DefaultAuthHost         = "https://launch-auth-v1.raydium.io"
	DefaultCommentHost      = "https://launch-forum-v1.raydium.io"
	DefaultHistoryHost      = "https://launch-history-v1.raydium.io"
	DefaultMintHost         = "https://launch-mint-v1.raydium.io"
	DefaultLaunchpadProgram = "LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj"
	DefaultPlatformID       = "FEkF8SrSckk5GkfbmtcCbuuifpTKkw6mrSNowwB8aQe3"
	DefaultSettingsPath     = "birthpad.settings.json"
	DefaultLocale           = "en"
	DefaultRetries          = 3
	DefaultTxValidationMode = "bypass"
)

// DefaultPlatformIDs is the ordered candidate list tried by buy and sell.
var DefaultPlatformIDs = []string{
	"FEkF8SrSckk5GkfbmtcCbuuifpTKkw6mrSNowwB8aQe3",
	"8pCtbn9iatQ8493mDQax4xfEUjhoVBpUWYVQoRU18333",
}

var DefaultSuffixRules = []SuffixRule{
	{Suffix: "bonk", Candidate: "FfYek5vEz23cMkWsdJwG2oa6EphsvXSHrGpdALN4g6W1"},
}

// LoadConfig reads the file at path (if any) on top of the defaults and applies
// BIRTHPAD_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_list":              []string{"https://api.mainnet-beta.solana.com"},
		"base_host":             DefaultBaseHost,
		"auth_host":             DefaultAuthHost,
		"comment_host":          DefaultCommentHost,
		"history_host":          DefaultHistoryHost,
		"mint_host":             DefaultMintHost,
		"launchpad_program":     DefaultLaunchpadProgram,
		"platform_id":           DefaultPlatformID,
		"platform_ids":          DefaultPlatformIDs,
		"platform_suffix_rules": []map[string]string{{"suffix": "bonk", "candidate": DefaultSuffixRules[0].Candidate}},
		"settings_path":         DefaultSettingsPath,
		"locale":                DefaultLocale,
		"retries":               DefaultRetries,
		"upload.provider":       "pinata",
		"upload.pinata_gateway": "https://gateway.pinata.cloud/ipfs/",
		"tx_validation.mode":    DefaultTxValidationMode,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	hosts := map[string]string{
		"base_host":    cfg.BaseHost,
		"auth_host":    cfg.AuthHost,
		"comment_host": cfg.CommentHost,
		"history_host": cfg.HistoryHost,
		"mint_host":    cfg.MintHost,
	}
	for name, host := range hosts {
		if err := validateURLWithCache(host, "http"); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if _, err := solana.PublicKeyFromBase58(cfg.LaunchpadProgram); err != nil {
		return fmt.Errorf("invalid launchpad_program: %w", err)
	}
	if len(cfg.PlatformIDs) == 0 {
		return errors.New("platform_ids is empty")
	}
	for _, id := range cfg.PlatformIDs {
		if _, err := solana.PublicKeyFromBase58(id); err != nil {
			return fmt.Errorf("invalid platform id %q: %w", id, err)
		}
	}
	for _, rule := range cfg.PlatformSuffixRules {
		if rule.Suffix == "" {
			return errors.New("platform suffix rule without suffix")
		}
		if _, err := solana.PublicKeyFromBase58(rule.Candidate); err != nil {
			return fmt.Errorf("invalid suffix candidate %q: %w", rule.Candidate, err)
		}
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	switch cfg.TxValidation.Mode {
	case "bypass":
	case "remote":
		if cfg.TxValidation.CheckURL == "" {
			return errors.New("tx_validation.check_url is required in remote mode")
		}
	default:
		return fmt.Errorf("unknown tx_validation.mode %q", cfg.TxValidation.Mode)
	}
	switch cfg.Upload.Provider {
	case "pinata", "lighthouse":
	default:
		return fmt.Errorf("unknown upload.provider %q", cfg.Upload.Provider)
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("BIRTHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envLicense := v.GetString("LICENSE"); envLicense != "" {
		cfg.License = envLicense
	}
	if dsn := v.GetString("SENTRY_DSN"); dsn != "" {
		cfg.SentryDSN = dsn
	}
	if pg := v.GetString("POSTGRES_URL"); pg != "" {
		cfg.PostgresURL = pg
	}
	if rpcs := splitList(v.GetString("RPC_LIST")); len(rpcs) > 0 {
		cfg.RPCList = rpcs
	}
	if ids := splitList(v.GetString("PLATFORM_IDS")); len(ids) > 0 {
		cfg.PlatformIDs = ids
	}
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
