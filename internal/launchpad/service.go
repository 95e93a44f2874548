// Package launchpad holds the launchpad session state and the create, buy and
// sell actions.
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/blockchain"
	"github.com/rovshanmuradov/birthpad/internal/config"
	"github.com/rovshanmuradov/birthpad/internal/events"
	"github.com/rovshanmuradov/birthpad/internal/launchpad/program"
	"github.com/rovshanmuradov/birthpad/internal/storage"
	"github.com/rovshanmuradov/birthpad/internal/wallet"
)

// ErrNotAuthorized means the action needs a launchpad auth token.
var ErrNotAuthorized = errors.New("launchpad auth token is not set")

// DefaultSlippage is 2.5%.
var DefaultSlippage = decimal.RequireFromString("0.025")

// ChainProvider returns the client of the currently selected RPC node.
type ChainProvider interface {
	Chain() blockchain.Client
}

// MintAPI is the part of the backend the launchpad talks to.
type MintAPI interface {
	LaunchpadConfigs(ctx context.Context) ([]api.LaunchpadConfig, error)
	CreateMintInfo(ctx context.Context, token string, form api.MintForm) (string, error)
	CreateRandomMint(ctx context.Context, token string, form api.MintForm) (*api.RandomMint, error)
}

// Hosts of the launchpad backends.
type Hosts struct {
	Auth    string
	Comment string
	History string
	Mint    string
}

// State is the observable launchpad state.
type State struct {
	Hosts           Hosts
	Slippage        decimal.Decimal
	PlatformID      solana.PublicKey
	RefreshPoolMint string
	Token           string
}

// Options configure a Service.
type Options struct {
	ProgramID      solana.PublicKey
	PlatformID     solana.PublicKey
	Candidates     Candidates
	Hosts          Hosts
	Slippage       decimal.Decimal
	ConfirmTimeout time.Duration
}

// OptionsFromConfig reads program, platform and host settings.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	programID, err := solana.PublicKeyFromBase58(cfg.LaunchpadProgram)
	if err != nil {
		return Options{}, fmt.Errorf("invalid launchpad program: %w", err)
	}
	platformID, err := solana.PublicKeyFromBase58(cfg.PlatformID)
	if err != nil {
		return Options{}, fmt.Errorf("invalid platform id: %w", err)
	}
	candidates, err := CandidatesFromConfig(cfg.PlatformIDs, cfg.PlatformSuffixRules)
	if err != nil {
		return Options{}, err
	}
	return Options{
		ProgramID:  programID,
		PlatformID: platformID,
		Candidates: candidates,
		Hosts: Hosts{
			Auth:    cfg.AuthHost,
			Comment: cfg.CommentHost,
			History: cfg.HistoryHost,
			Mint:    cfg.MintHost,
		},
		Slippage: DefaultSlippage,
	}, nil
}

// Service is the launchpad store. It is safe for concurrent use, but two
// trades on the same wallet are not serialized.
type Service struct {
	chain   ChainProvider
	api     MintAPI
	bus     events.Publisher
	history storage.Storage
	logger  *zap.Logger

	programID      solana.PublicKey
	candidates     Candidates
	confirmTimeout time.Duration

	mu      sync.RWMutex
	signer  wallet.Signer
	initial State
	state   State
	configs map[solana.PublicKey]*program.GlobalConfig
}

// New creates the service. history may be nil.
func New(opts Options, chain ChainProvider, mintAPI MintAPI, bus events.Publisher, history storage.Storage, logger *zap.Logger) *Service {
	if opts.ProgramID.IsZero() {
		opts.ProgramID = program.DefaultProgramID
	}
	if opts.Slippage.IsZero() {
		opts.Slippage = DefaultSlippage
	}
	if opts.ConfirmTimeout == 0 {
		opts.ConfirmTimeout = 60 * time.Second
	}
	if bus == nil {
		bus = events.NopPublisher{}
	}
	initial := State{Hosts: opts.Hosts, Slippage: opts.Slippage, PlatformID: opts.PlatformID}
	return &Service{
		chain:          chain,
		api:            mintAPI,
		bus:            bus,
		history:        history,
		logger:         logger.Named("launchpad"),
		programID:      opts.ProgramID,
		candidates:     opts.Candidates,
		confirmTimeout: opts.ConfirmTimeout,
		initial:        initial,
		state:          initial,
		configs:        make(map[solana.PublicKey]*program.GlobalConfig),
	}
}

// ProgramID is the launchpad program the service talks to.
func (s *Service) ProgramID() solana.PublicKey { return s.programID }

// State returns a snapshot.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetSigner connects or disconnects (nil) the wallet.
func (s *Service) SetSigner(signer wallet.Signer) {
	s.mu.Lock()
	s.signer = signer
	s.mu.Unlock()
}

func (s *Service) SetToken(token string) {
	s.mu.Lock()
	s.state.Token = token
	s.mu.Unlock()
}

func (s *Service) SetSlippage(fraction decimal.Decimal) {
	s.mu.Lock()
	s.state.Slippage = fraction
	s.mu.Unlock()
}

// ClearRefresh acknowledges a pool refresh request.
func (s *Service) ClearRefresh() {
	s.mu.Lock()
	s.state.RefreshPoolMint = ""
	s.mu.Unlock()
}

// Reset restores the initial state and drops the config cache.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.initial
	s.configs = make(map[solana.PublicKey]*program.GlobalConfig)
}

func (s *Service) currentSigner() (wallet.Signer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.signer == nil {
		return nil, wallet.ErrNotConnected
	}
	return s.signer, nil
}

func (s *Service) client() (blockchain.Client, error) {
	if s.chain == nil {
		return nil, errors.New("rpc connection is not ready")
	}
	c := s.chain.Chain()
	if c == nil {
		return nil, errors.New("rpc connection is not ready")
	}
	return c, nil
}

func (s *Service) toast(status events.ToastStatus, title, description string, txErr error) {
	t := events.NewToast(status, title, description)
	t.TxError = txErr
	if err := s.bus.Publish(t); err != nil {
		s.logger.Debug("Toast dropped", zap.Error(err))
	}
}

func (s *Service) publish(e events.Event) {
	if err := s.bus.Publish(e); err != nil {
		s.logger.Debug("Event dropped", zap.String("type", string(e.Type())), zap.Error(err))
	}
}

// GetConfigInfo returns the on-chain global config, cached per id.
func (s *Service) GetConfigInfo(ctx context.Context, configID solana.PublicKey) (*program.GlobalConfig, error) {
	s.mu.RLock()
	cached, ok := s.configs[configID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	client, err := s.client()
	if err != nil {
		return nil, err
	}
	info, err := client.GetAccountInfo(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("get config %s: %w", configID, err)
	}
	cfg, err := program.DecodeConfig(info.Value.Data.GetBinary())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.configs[configID] = cfg
	s.mu.Unlock()
	return cfg, nil
}
