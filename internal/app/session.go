// Package app holds the session: the selected RPC node, backend-derived
// settings and the user's priority fee preferences.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/blockchain"
	"github.com/rovshanmuradov/birthpad/internal/blockchain/solbc"
	"github.com/rovshanmuradov/birthpad/internal/events"
	"github.com/rovshanmuradov/birthpad/internal/settings"
	"github.com/rovshanmuradov/birthpad/internal/types"
)

// DefaultAppVersion is the client version compared against the backend.
const DefaultAppVersion = "V3.0.2"

var (
	// ErrAllRPCsFailed is returned when no RPC node passed validation.
	ErrAllRPCsFailed = errors.New("all RPCs failed")
	// ErrNoConnection means no RPC node has been selected yet.
	ErrNoConnection = errors.New("no RPC connection")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// Backend is the part of the backend API the session uses.
type Backend interface {
	RPCs(ctx context.Context) ([]api.RPCNode, error)
	ChainTimeOffset(ctx context.Context) (int64, error)
	AutoFee(ctx context.Context) (*api.AutoFee, error)
	AppVersion(ctx context.Context) (*api.AppVersion, error)
	URLs() api.URLConfig
	SetURLs(u api.URLConfig)
}

// Dialer opens a client for an RPC URL. It must not do network I/O.
type Dialer func(url string) blockchain.Client

// SolanaDialer dials with solbc.
func SolanaDialer(logger *zap.Logger) Dialer {
	return func(url string) blockchain.Client {
		return solbc.NewClient(url, logger)
	}
}

// Options configure a Session.
type Options struct {
	Prod             bool
	AppVersion       string
	RPCNodes         []api.RPCNode // used until the backend list arrives
	LaunchpadProgram solana.PublicKey
	Retries          int
	RetryInterval    time.Duration
	EpochTTL         time.Duration
	HTTPClient       *http.Client
}

// State is a snapshot of the session.
type State struct {
	RPCs                []api.RPCNode
	RPCURL              string
	WSURL               string
	ChainTimeOffset     int64 // ms
	BlockSlotsPerSecond float64
	URLs                api.URLConfig
	LaunchpadProgram    solana.PublicKey
	DisplayTokens       settings.DisplayTokenSettings
	AppVersion          string
	NeedRefresh         bool
	PriorityLevel       types.PriorityLevel
	PriorityMode        types.PriorityMode
	TransactionFee      string
	FeeConfig           types.FeeConfig
	Initialized         bool
}

// Session replaces the process-wide app store. Create one per run, call
// Init, and Close it on exit.
type Session struct {
	backend Backend
	prefs   *settings.Store
	dial    Dialer
	bus     events.Publisher
	logger  *zap.Logger
	http    *http.Client

	prod          bool
	retries       uint
	retryInterval time.Duration
	epochTTL      time.Duration

	rpcLoading    atomic.Bool
	rpcValidating atomic.Bool

	mu          sync.RWMutex
	initial     State
	state       State
	chain       blockchain.Client
	closed      bool
	epoch       *blockchain.EpochInfo
	epochAt     time.Time
	epochLoad   bool
	epochFlight singleflight.Group
	initialURLs api.URLConfig
}

// NewSession creates a session. prefs may be nil; bus may be nil.
func NewSession(opts Options, backend Backend, prefs *settings.Store, dial Dialer, bus events.Publisher, logger *zap.Logger) *Session {
	if opts.AppVersion == "" {
		opts.AppVersion = DefaultAppVersion
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.RetryInterval == 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	if opts.EpochTTL == 0 {
		opts.EpochTTL = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if dial == nil {
		dial = SolanaDialer(logger)
	}
	if bus == nil {
		bus = events.NopPublisher{}
	}

	initial := State{
		RPCs:             append([]api.RPCNode(nil), opts.RPCNodes...),
		URLs:             backend.URLs(),
		LaunchpadProgram: opts.LaunchpadProgram,
		DisplayTokens:    settings.DefaultDisplayTokenSettings(),
		AppVersion:       opts.AppVersion,
		PriorityLevel:    types.PriorityTurbo,
		PriorityMode:     types.PriorityMaxCap,
		TransactionFee:   "0.01",
		FeeConfig:        types.FeeConfig{},
	}

	return &Session{
		backend:       backend,
		prefs:         prefs,
		dial:          dial,
		bus:           bus,
		logger:        logger.Named("app"),
		http:          opts.HTTPClient,
		prod:          opts.Prod,
		retries:       uint(opts.Retries),
		retryInterval: opts.RetryInterval,
		epochTTL:      opts.EpochTTL,
		initial:       initial,
		state:         initial,
		initialURLs:   initial.URLs,
	}
}

// Init loads stored preferences, selects an RPC node and fetches the chain
// time offset. Only the RPC selection is fatal.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	s.loadPrefs()

	if err := s.FetchRPCs(ctx); err != nil {
		s.logger.Warn("Backend RPC list unavailable, using configured nodes", zap.Error(err))
		if !s.trySeedNodes(ctx) {
			return err
		}
	}

	s.FetchChainTime(ctx)

	s.mu.Lock()
	s.state.Initialized = true
	s.mu.Unlock()
	s.logger.Info("Session initialized", zap.String("rpc", s.State().RPCURL))
	return nil
}

// trySeedNodes falls back to the configured RPC list.
func (s *Session) trySeedNodes(ctx context.Context) bool {
	if s.Chain() != nil {
		return true
	}
	nodes := s.initial.RPCs
	for i, n := range nodes {
		if s.SetRPCURL(ctx, n.URL, true, i != len(nodes)-1) {
			return true
		}
	}
	return false
}

func (s *Session) loadPrefs() {
	if s.prefs == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.DisplayTokens = s.prefs.DisplayTokenSettings()
	if lvl, ok := s.prefs.PriorityLevel(); ok {
		s.state.PriorityLevel = types.PriorityLevel(lvl)
	}
	if mode, ok := s.prefs.PriorityMode(); ok {
		s.state.PriorityMode = types.PriorityMode(mode)
	}
	if fee, ok := s.prefs.TransactionFee(); ok {
		s.state.TransactionFee = fee
	}
	// переопределение хоста только вне prod
	if !s.prod {
		if host, ok := s.prefs.Get(settings.KeyAPIHost); ok && host != "" {
			s.state.URLs.BaseHost = host
			s.backend.SetURLs(s.state.URLs)
		}
	}
}

// Close drops the RPC client. The session cannot be reused.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.chain = nil
	s.logger.Debug("Session closed")
	return nil
}

// Reset restores the initial state and disconnects from the RPC node.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.initial
	s.chain = nil
	s.epoch = nil
	s.epochAt = time.Time{}
	s.backend.SetURLs(s.initialURLs)
}

// Chain returns the client of the selected RPC node, nil before one is selected.
func (s *Session) Chain() blockchain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain
}

// State returns a snapshot.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.RPCs = append([]api.RPCNode(nil), s.state.RPCs...)
	fees := make(types.FeeConfig, len(s.state.FeeConfig))
	for k, v := range s.state.FeeConfig {
		fees[k] = v
	}
	st.FeeConfig = fees
	return st
}

func (s *Session) toast(status events.ToastStatus, title, description string) {
	if err := s.bus.Publish(events.NewToast(status, title, description)); err != nil {
		s.logger.Debug("Toast dropped", zap.Error(err))
	}
}
