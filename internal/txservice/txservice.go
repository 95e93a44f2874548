// Package txservice is the optional transaction validation side-channel.
// In bypass mode every check succeeds locally.
package txservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/config"
	"github.com/rovshanmuradov/birthpad/internal/wallet"
)

const (
	ModeBypass = "bypass"
	ModeRemote = "remote"
)

// ErrRejected is returned by the validating signer when the service refuses a transaction.
var ErrRejected = errors.New("transaction rejected by validation service")

// CheckResult is the answer of the check-tx endpoint.
type CheckResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
}

// ExtendResult is the answer of the ins-extend endpoint.
type ExtendResult struct {
	ID      string   `json:"id"`
	Success bool     `json:"success"`
	Data    []string `json:"data"`
	Msg     string   `json:"msg,omitempty"`
}

// ValidateRequest describes a signed batch.
type ValidateRequest struct {
	Data         []string `json:"data"`
	PreData      []string `json:"preData"`
	UserSignTime int64    `json:"userSignTime"`
	WalletName   string   `json:"walletName"`
	DeviceType   string   `json:"deviceType"`
	RPC          string   `json:"rpc"`
}

// Service validates and extends transactions. Failures are reported in the
// result, never as errors.
type Service interface {
	ValidateTxData(ctx context.Context, req ValidateRequest) CheckResult
	ExtendTxData(ctx context.Context, txs []string) ExtendResult
}

// New returns the service selected by cfg.Mode.
func New(cfg config.TxValidationConfig, logger *zap.Logger) Service {
	if cfg.Mode == ModeRemote {
		return NewRemote(cfg.CheckURL, cfg.ExtendURL, logger)
	}
	return Bypass{}
}

// Bypass accepts everything.
type Bypass struct{}

func (Bypass) ValidateTxData(context.Context, ValidateRequest) CheckResult {
	return CheckResult{Success: true}
}

func (Bypass) ExtendTxData(context.Context, []string) ExtendResult {
	return ExtendResult{Success: true, Data: []string{}}
}

// Remote posts to the configured endpoints.
type Remote struct {
	checkURL  string
	extendURL string
	client    *http.Client
	logger    *zap.Logger
}

func NewRemote(checkURL, extendURL string, logger *zap.Logger) *Remote {
	return &Remote{
		checkURL:  checkURL,
		extendURL: extendURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger.Named("txservice"),
	}
}

func (r *Remote) ValidateTxData(ctx context.Context, req ValidateRequest) CheckResult {
	var res CheckResult
	if err := r.post(ctx, r.checkURL, req, &res); err != nil {
		r.logger.Warn("Tx validation failed", zap.Error(err))
		return CheckResult{Success: false, Msg: errMsg(err, "validate tx failed")}
	}
	return res
}

func (r *Remote) ExtendTxData(ctx context.Context, txs []string) ExtendResult {
	if r.extendURL == "" {
		return ExtendResult{Success: true, Data: []string{}}
	}
	body := struct {
		WalletName string   `json:"walletName"`
		Data       []string `json:"data"`
	}{WalletName: "keypair", Data: txs}
	var res ExtendResult
	if err := r.post(ctx, r.extendURL, body, &res); err != nil {
		r.logger.Warn("Tx extend failed", zap.Error(err))
		return ExtendResult{Success: false, Data: []string{}, Msg: errMsg(err, "extend tx failed")}
	}
	return res
}

func (r *Remote) post(ctx context.Context, url string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errMsg(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// ValidatingSigner signs with the inner signer and then asks the service to
// validate the result. A rejected transaction must not be sent.
type ValidatingSigner struct {
	inner   wallet.Signer
	service Service
	rpcName func() string
	now     func() time.Time
}

func NewValidatingSigner(inner wallet.Signer, service Service, rpcName func() string) *ValidatingSigner {
	if rpcName == nil {
		rpcName = func() string { return "userChange" }
	}
	return &ValidatingSigner{inner: inner, service: service, rpcName: rpcName, now: time.Now}
}

func (s *ValidatingSigner) Address() solana.PublicKey {
	return s.inner.Address()
}

func (s *ValidatingSigner) SignTransaction(tx *solana.Transaction, extra ...solana.PrivateKey) error {
	pre, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := s.inner.SignTransaction(tx, extra...); err != nil {
		return err
	}
	signed, err := tx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode signed tx: %w", err)
	}
	res := s.service.ValidateTxData(context.Background(), ValidateRequest{
		Data:         []string{base64.StdEncoding.EncodeToString(signed)},
		PreData:      []string{base64.StdEncoding.EncodeToString(pre)},
		UserSignTime: s.now().UnixMilli(),
		WalletName:   "keypair",
		DeviceType:   "pc",
		RPC:          s.rpcName(),
	})
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrRejected, res.Msg)
	}
	return nil
}

var _ wallet.Signer = (*ValidatingSigner)(nil)
