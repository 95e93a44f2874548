package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWalletRejectsShortKey(t *testing.T) {
	_, err := NewWallet("3yZe7d")
	assert.ErrorContains(t, err, "invalid private key length")
}

func TestLoadFromFileFormats(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	dir := t.TempDir()

	b58 := filepath.Join(dir, "key.txt")
	require.NoError(t, os.WriteFile(b58, []byte(key.String()+"\n"), 0o600))
	w, err := LoadFromFile(b58)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.Address())

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)
	keygen := filepath.Join(dir, "id.json")
	require.NoError(t, os.WriteFile(keygen, raw, 0o600))
	w, err = LoadFromFile(keygen)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.Address())
}

func TestSignTransactionWithExtraSigner(t *testing.T) {
	w, err := NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	mint := solana.NewWallet().PrivateKey

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewCreateAccountInstruction(1, 82, solana.TokenProgramID, w.Address(), mint.PublicKey()).Build()},
		solana.Hash{},
		solana.TransactionPayer(w.Address()),
	)
	require.NoError(t, err)

	// без ключа mint подпись невозможна
	assert.Error(t, w.SignTransaction(tx))

	require.NoError(t, w.SignTransaction(tx, mint))
	require.Len(t, tx.Signatures, 2)
	assert.NoError(t, tx.VerifySignatures())
}

func TestGetATAMatchesDerivation(t *testing.T) {
	w, err := NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	mint := solana.NewWallet().PublicKey()

	ata, err := w.GetATA(mint)
	require.NoError(t, err)
	derived, err := FindATA(w.Address(), mint, solana.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, derived, ata)

	ix := CreateAssociatedTokenAccountIdempotentInstruction(w.Address(), w.Address(), mint, solana.TokenProgramID)
	accounts := ix.Accounts()
	assert.Equal(t, ata, accounts[1].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[5].PublicKey)
}
