package solbc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/blockchain"
)

const anchorLog = "Program log: AnchorError occurred. Error Code: ExceededSlippage. Error Number: 6003. Error Message: Exceeds desired slippage limit."

// fakeRPC отвечает заготовленными result по имени метода.
func fakeRPC(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected method %s", req.Method)
			result = "null"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	}))
}

func testTx(t *testing.T) *solana.Transaction {
	t.Helper()
	payer := solana.NewWallet()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()},
		solana.Hash{},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestGetAccountInfoMissing(t *testing.T) {
	srv := fakeRPC(t, map[string]string{
		"getAccountInfo": `{"context":{"slot":1},"value":null}`,
	})
	defer srv.Close()

	c := NewClient(srv.URL, zaptest.NewLogger(t))
	_, err := c.GetAccountInfo(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, blockchain.ErrAccountNotFound)
}

func TestGetEpochInfo(t *testing.T) {
	srv := fakeRPC(t, map[string]string{
		"getEpochInfo": `{"absoluteSlot":300,"blockHeight":280,"epoch":7,"slotIndex":12,"slotsInEpoch":432000}`,
	})
	defer srv.Close()

	info, err := NewClient(srv.URL, zaptest.NewLogger(t)).GetEpochInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), info.Epoch)
	assert.Equal(t, uint64(432000), info.SlotsInEpoch)
}

func TestSimulateTransactionReportsProgramError(t *testing.T) {
	srv := fakeRPC(t, map[string]string{
		"simulateTransaction": `{"context":{"slot":1},"value":{"err":{"InstructionError":[0,{"Custom":6003}]},"logs":["` + anchorLog + `"],"unitsConsumed":1200}}`,
	})
	defer srv.Close()

	res, err := NewClient(srv.URL, zaptest.NewLogger(t)).SimulateTransaction(context.Background(), testTx(t))
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, uint64(1200), res.UnitsConsumed)

	described := DescribeSimulation(res)
	require.Error(t, described)
	var f SimulationFailure
	require.ErrorAs(t, described, &f)
	require.NotNil(t, f.Anchor)
	assert.Equal(t, 6003, f.Anchor.Code)
	assert.Equal(t, "ExceededSlippage", f.Anchor.Name)
	assert.Equal(t, "Exceeds desired slippage limit", f.Anchor.Msg)
}

func TestDescribeSimulationSuccess(t *testing.T) {
	assert.NoError(t, DescribeSimulation(&blockchain.SimulationResult{Logs: []string{"ok"}}))
}

func TestWaitForTransactionConfirmation(t *testing.T) {
	srv := fakeRPC(t, map[string]string{
		"getSignatureStatuses": `{"context":{"slot":1},"value":[{"slot":1,"confirmations":null,"err":null,"confirmationStatus":"confirmed"}]}`,
	})
	defer srv.Close()

	c := NewClient(srv.URL, zaptest.NewLogger(t))
	c.pollInterval = 10 * time.Millisecond
	err := c.WaitForTransactionConfirmation(context.Background(), solana.Signature{1}, rpc.CommitmentConfirmed)
	assert.NoError(t, err)
}

func TestWaitForTransactionConfirmationFailedTx(t *testing.T) {
	srv := fakeRPC(t, map[string]string{
		"getSignatureStatuses": `{"context":{"slot":1},"value":[{"slot":1,"confirmations":null,"err":{"InstructionError":[2,{"Custom":1}]},"confirmationStatus":"confirmed"}]}`,
	})
	defer srv.Close()

	c := NewClient(srv.URL, zaptest.NewLogger(t))
	c.pollInterval = 10 * time.Millisecond
	err := c.WaitForTransactionConfirmation(context.Background(), solana.Signature{1}, rpc.CommitmentConfirmed)
	assert.ErrorContains(t, err, "failed")
}

func TestAnchorErrorFromLogs(t *testing.T) {
	_, ok := AnchorErrorFromLogs([]string{"Program log: Instruction: BuyExactIn"})
	assert.False(t, ok)

	a, ok := AnchorErrorFromLogs([]string{"Program log: Instruction: SellExactIn", anchorLog})
	require.True(t, ok)
	assert.Equal(t, "ExceededSlippage", a.Name)
}
