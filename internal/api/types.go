// internal/api/types.go
package api

import (
	"github.com/shopspring/decimal"
)

// URLConfig holds backend hosts and paths. Hosts may be overridden at runtime.
type URLConfig struct {
	BaseHost string
	MintHost string

	RPCs        string
	ChainTime   string
	Version     string
	PriorityFee string
	MintList    string

	Configs        string
	CreateMintInfo string
	RandomMint     string
}

// DefaultURLConfig returns the stock paths on the given hosts.
func DefaultURLConfig(baseHost, mintHost string) URLConfig {
	return URLConfig{
		BaseHost:       baseHost,
		MintHost:       mintHost,
		RPCs:           "/main/rpcs",
		ChainTime:      "/main/chain-time",
		Version:        "/main/version",
		PriorityFee:    "/main/auto-fee",
		MintList:       "/mint/list",
		Configs:        "/main/configs",
		CreateMintInfo: "/create/mint-info",
		RandomMint:     "/create/get-random-mint",
	}
}

// envelope is the common response wrapper of the backend.
type envelope[T any] struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Data    T      `json:"data"`
}

// RPCNode is one entry of the backend RPC list.
type RPCNode struct {
	URL    string `json:"url"`
	WS     string `json:"ws,omitempty"`
	Weight int    `json:"weight"`
	Batch  bool   `json:"batch"`
	Name   string `json:"name"`
}

type rpcList struct {
	RPCs []RPCNode `json:"rpcs"`
}

type chainTime struct {
	Offset *float64 `json:"offset"`
}

// AutoFee is the suggested priority fee in lamports per level.
type AutoFee struct {
	Default struct {
		M  int64 `json:"m"`
		H  int64 `json:"h"`
		VH int64 `json:"vh"`
	} `json:"default"`
}

// AppVersion is the published client version range.
type AppVersion struct {
	Latest string `json:"latest"`
	Least  string `json:"least"`
}

// Token is a token list entry.
type Token struct {
	ChainID    int                    `json:"chainId"`
	Address    string                 `json:"address"`
	ProgramID  string                 `json:"programId"`
	LogoURI    string                 `json:"logoURI"`
	Symbol     string                 `json:"symbol"`
	Name       string                 `json:"name"`
	Decimals   int                    `json:"decimals"`
	Tags       []string               `json:"tags"`
	Extensions map[string]interface{} `json:"extensions"`
}

// MintList is the token list payload.
type MintList struct {
	MintList  []Token  `json:"mintList"`
	Blacklist []string `json:"blacklist"`
	WhiteList []string `json:"whiteList"`
}

// ConfigKey is the launchpad global config as served by the mint host.
// Numeric fields arrive either quoted or bare.
type ConfigKey struct {
	PubKey              string          `json:"pubKey"`
	Epoch               decimal.Decimal `json:"epoch"`
	CurveType           uint8           `json:"curveType"`
	Index               uint16          `json:"index"`
	MigrateFee          decimal.Decimal `json:"migrateFee"`
	TradeFeeRate        decimal.Decimal `json:"tradeFeeRate"`
	MaxShareFeeRate     decimal.Decimal `json:"maxShareFeeRate"`
	MinSupplyA          decimal.Decimal `json:"minSupplyA"`
	MaxLockRate         decimal.Decimal `json:"maxLockRate"`
	MinSellRateA        decimal.Decimal `json:"minSellRateA"`
	MinMigrateRateA     decimal.Decimal `json:"minMigrateRateA"`
	MinFundRaisingB     decimal.Decimal `json:"minFundRaisingB"`
	MintB               string          `json:"mintB"`
	ProtocolFeeOwner    string          `json:"protocolFeeOwner"`
	MigrateFeeOwner     string          `json:"migrateFeeOwner"`
	MigrateToAmmWallet  string          `json:"migrateToAmmWallet"`
	MigrateToCpmmWallet string          `json:"migrateToCpmmWallet"`
}

// LaunchpadConfig pairs a config with its quote mint.
type LaunchpadConfig struct {
	Key       ConfigKey `json:"key"`
	MintInfoB Token     `json:"mintInfoB"`
}

type configList struct {
	Data []LaunchpadConfig `json:"data"`
}

// RandomMint is the vanity mint reserved by the mint host.
type RandomMint struct {
	Mint         string `json:"mint"`
	MetadataLink string `json:"metadataLink"`
}

type createdMint struct {
	Mint string `json:"mint"`
}
