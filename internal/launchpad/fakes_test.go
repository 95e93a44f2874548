package launchpad

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/blockchain"
	"github.com/rovshanmuradov/birthpad/internal/events"
	"github.com/rovshanmuradov/birthpad/internal/launchpad/program"
	"github.com/rovshanmuradov/birthpad/internal/storage/memory"
	"github.com/rovshanmuradov/birthpad/internal/wallet"
)

// fakeChain is an in-memory blockchain.Client. Unknown accounts are reported
// as missing; simulation succeeds only for platform ids in passing.
type fakeChain struct {
	mu sync.Mutex

	accounts   map[solana.PublicKey][]byte
	passing    map[solana.PublicKey]bool
	passAll    bool
	confirmErr error

	reads     int
	simulated []solana.PublicKey
	sent      []*solana.Transaction
	sendOpts  []blockchain.TransactionOptions
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		accounts: make(map[solana.PublicKey][]byte),
		passing:  make(map[solana.PublicKey]bool),
	}
}

func (f *fakeChain) Chain() blockchain.Client { return f }

// platformOf reads the platform id from the launchpad instruction, always the last one.
func platformOf(tx *solana.Transaction) solana.PublicKey {
	ix := tx.Message.Instructions[len(tx.Message.Instructions)-1]
	return tx.Message.AccountKeys[ix.Accounts[3]]
}

func (f *fakeChain) GetRecentBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{7}, nil
}

func (f *fakeChain) GetAccountInfo(_ context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	data, ok := f.accounts[pubkey]
	if !ok {
		return nil, blockchain.ErrAccountNotFound
	}
	return &rpc.GetAccountInfoResult{Value: &rpc.Account{Data: rpc.DataBytesOrJSONFromBytes(data)}}, nil
}

func (f *fakeChain) GetSignatureStatuses(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	return &rpc.GetSignatureStatusesResult{}, nil
}

func (f *fakeChain) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	f.sendOpts = append(f.sendOpts, opts)
	return tx.Signatures[0], nil
}

func (f *fakeChain) SimulateTransaction(_ context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pid := platformOf(tx)
	f.simulated = append(f.simulated, pid)
	if f.passAll || f.passing[pid] {
		return &blockchain.SimulationResult{Logs: []string{"Program log: ok"}, UnitsConsumed: 42_000}, nil
	}
	return &blockchain.SimulationResult{
		Err: map[string]interface{}{"InstructionError": []interface{}{4, map[string]interface{}{"Custom": 6001}}},
		Logs: []string{
			"Program log: AnchorError occurred. Error Code: InvalidPlatform. Error Number: 6001. Error Message: Invalid platform.",
		},
	}, nil
}

func (f *fakeChain) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (uint64, error) {
	return 0, nil
}

func (f *fakeChain) GetEpochInfo(context.Context) (*blockchain.EpochInfo, error) {
	return &blockchain.EpochInfo{}, nil
}

func (f *fakeChain) WaitForTransactionConfirmation(context.Context, solana.Signature, rpc.CommitmentType) error {
	return f.confirmErr
}

// fakeMintAPI counts backend calls.
type fakeMintAPI struct {
	mu      sync.Mutex
	calls   int
	configs []api.LaunchpadConfig
	forms   []api.MintForm
}

func (a *fakeMintAPI) LaunchpadConfigs(context.Context) ([]api.LaunchpadConfig, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.configs, nil
}

func (a *fakeMintAPI) CreateMintInfo(_ context.Context, _ string, form api.MintForm) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.forms = append(a.forms, form)
	return solana.NewWallet().PublicKey().String(), nil
}

func (a *fakeMintAPI) CreateRandomMint(_ context.Context, _ string, form api.MintForm) (*api.RandomMint, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.forms = append(a.forms, form)
	return &api.RandomMint{Mint: solana.NewWallet().PublicKey().String(), MetadataLink: "https://ipfs.example/meta.json"}, nil
}

// recorder keeps every published event.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) toastTitles() []string {
	var titles []string
	for _, e := range r.ofType(events.Toast) {
		titles = append(titles, e.(events.ToastEvent).Title)
	}
	return titles
}

// rejectingSigner fails every signature.
type rejectingSigner struct {
	addr solana.PublicKey
	err  error
}

func (s rejectingSigner) Address() solana.PublicKey { return s.addr }

func (s rejectingSigner) SignTransaction(*solana.Transaction, ...solana.PrivateKey) error {
	return s.err
}

var errBoom = errors.New("boom")

type fixture struct {
	svc        *Service
	chain      *fakeChain
	api        *fakeMintAPI
	bus        *recorder
	history    *memory.Storage
	owner      *wallet.Wallet
	candidates []solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	owner, err := wallet.NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	f := &fixture{
		chain:   newFakeChain(),
		api:     &fakeMintAPI{},
		bus:     &recorder{},
		history: memory.New(),
		owner:   owner,
		candidates: []solana.PublicKey{
			solana.NewWallet().PublicKey(),
			solana.NewWallet().PublicKey(),
			solana.NewWallet().PublicKey(),
		},
	}
	f.svc = New(Options{
		PlatformID: f.candidates[0],
		Candidates: Candidates{Ordered: f.candidates},
	}, f.chain, f.api, f.bus, f.history, zaptest.NewLogger(t))
	f.svc.SetSigner(owner)
	return f
}

// listPool stores a trading pool for mint against WSOL and returns it.
func (f *fixture) listPool(t *testing.T, mint solana.PublicKey) *program.PoolState {
	t.Helper()
	addr, err := program.PoolPDA(program.DefaultProgramID, mint, solana.WrappedSol)
	require.NoError(t, err)

	pool := &program.PoolState{
		Discriminator: program.PoolStateDiscriminator,
		Status:        program.PoolStatusTrading,
		MintDecimalsA: 6,
		MintDecimalsB: 9,
		PlatformID:    f.candidates[0],
		MintA:         mint,
		MintB:         solana.WrappedSol,
		Creator:       solana.NewWallet().PublicKey(),
	}
	raw, err := program.Encode(pool)
	require.NoError(t, err)
	f.chain.accounts[addr] = raw
	return pool
}
