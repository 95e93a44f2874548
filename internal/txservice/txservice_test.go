package txservice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/config"
	"github.com/rovshanmuradov/birthpad/internal/wallet"
)

func TestBypassAlwaysSucceeds(t *testing.T) {
	svc := New(config.TxValidationConfig{Mode: ModeBypass}, zaptest.NewLogger(t))
	assert.True(t, svc.ValidateTxData(context.Background(), ValidateRequest{}).Success)
	ext := svc.ExtendTxData(context.Background(), []string{"abc"})
	assert.True(t, ext.Success)
	assert.Empty(t, ext.Data)
}

func TestRemoteReportsFailuresInResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))
	defer srv.Close()

	svc := NewRemote(srv.URL, srv.URL, zaptest.NewLogger(t))
	res := svc.ValidateTxData(context.Background(), ValidateRequest{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Msg, "500")

	ext := svc.ExtendTxData(context.Background(), nil)
	assert.False(t, ext.Success)
}

func testTx(t *testing.T, payer solana.PublicKey) *solana.Transaction {
	t.Helper()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build()},
		solana.Hash{},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)
	return tx
}

func TestValidatingSigner(t *testing.T) {
	var got ValidateRequest
	accept := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(CheckResult{ID: "1", Success: accept, Msg: "blocked"})
	}))
	defer srv.Close()

	w, err := wallet.NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	signer := NewValidatingSigner(w, NewRemote(srv.URL, "", zaptest.NewLogger(t)), func() string { return "Helius" })

	require.NoError(t, signer.SignTransaction(testTx(t, w.Address())))
	assert.Equal(t, "Helius", got.RPC)
	require.Len(t, got.Data, 1)
	require.Len(t, got.PreData, 1)
	assert.NotEqual(t, got.Data[0], got.PreData[0])

	accept = false
	err = signer.SignTransaction(testTx(t, w.Address()))
	assert.ErrorIs(t, err, ErrRejected)
}
