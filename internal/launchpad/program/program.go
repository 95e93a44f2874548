// Package program is the instruction and account codec of the launchpad
// bonding-curve program: PDA derivation, instruction encoding and state decoding.
package program

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// DefaultProgramID is the mainnet launchpad program.
	DefaultProgramID = solana.MustPublicKeyFromBase58("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj")

	MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// PDA seeds
var (
	seedAuth           = []byte("vault_auth_seed")
	seedConfig         = []byte("global_config")
	seedPool           = []byte("pool")
	seedPoolVault      = []byte("pool_vault")
	seedEventAuthority = []byte("__event_authority")
	seedMetadata       = []byte("metadata")
)

// Anchor discriminators
var (
	BuyExactInDiscriminator   = instructionDiscriminator("buy_exact_in")
	SellExactInDiscriminator  = instructionDiscriminator("sell_exact_in")
	InitializeV2Discriminator = instructionDiscriminator("initialize_v2")

	PoolStateDiscriminator    = accountDiscriminator("PoolState")
	GlobalConfigDiscriminator = accountDiscriminator("GlobalConfig")
)

func instructionDiscriminator(name string) [8]byte {
	return anchorHash("global:" + name)
}

func accountDiscriminator(name string) [8]byte {
	return anchorHash("account:" + name)
}

func anchorHash(s string) [8]byte {
	sum := sha256.Sum256([]byte(s))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

func find(programID solana.PublicKey, seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(seeds, programID)
	return addr, err
}

// AuthPDA is the vault authority of the program.
func AuthPDA(programID solana.PublicKey) (solana.PublicKey, error) {
	return find(programID, seedAuth)
}

// ConfigPDA derives the global config for a quote mint, curve type and index.
func ConfigPDA(programID, mintB solana.PublicKey, curveType uint8, index uint16) (solana.PublicKey, error) {
	idx := make([]byte, 2)
	binary.BigEndian.PutUint16(idx, index)
	return find(programID, seedConfig, mintB.Bytes(), []byte{curveType}, idx)
}

// PoolPDA derives the pool of a base/quote mint pair.
func PoolPDA(programID, mintA, mintB solana.PublicKey) (solana.PublicKey, error) {
	return find(programID, seedPool, mintA.Bytes(), mintB.Bytes())
}

// VaultPDA derives the pool's vault for mint.
func VaultPDA(programID, pool, mint solana.PublicKey) (solana.PublicKey, error) {
	return find(programID, seedPoolVault, pool.Bytes(), mint.Bytes())
}

// PlatformVaultPDA collects platform fees in mintB.
func PlatformVaultPDA(programID, platformID, mintB solana.PublicKey) (solana.PublicKey, error) {
	return find(programID, platformID.Bytes(), mintB.Bytes())
}

// CreatorVaultPDA collects creator fees in mintB.
func CreatorVaultPDA(programID, creator, mintB solana.PublicKey) (solana.PublicKey, error) {
	return find(programID, creator.Bytes(), mintB.Bytes())
}

func EventAuthorityPDA(programID solana.PublicKey) (solana.PublicKey, error) {
	return find(programID, seedEventAuthority)
}

// MetadataPDA is the Metaplex metadata account of mint.
func MetadataPDA(mint solana.PublicKey) (solana.PublicKey, error) {
	return find(MetadataProgramID, seedMetadata, MetadataProgramID.Bytes(), mint.Bytes())
}

// PoolAccounts are the addresses shared by every trade on one pool.
type PoolAccounts struct {
	Program        solana.PublicKey
	Auth           solana.PublicKey
	Config         solana.PublicKey
	Pool           solana.PublicKey
	VaultA         solana.PublicKey
	VaultB         solana.PublicKey
	EventAuthority solana.PublicKey
	MintA          solana.PublicKey
	MintB          solana.PublicKey
}

// DerivePoolAccounts derives the pool addresses for mintA traded against
// mintB under the config (curveType, index).
func DerivePoolAccounts(programID, mintA, mintB solana.PublicKey, curveType uint8, index uint16) (*PoolAccounts, error) {
	var (
		acc = &PoolAccounts{Program: programID, MintA: mintA, MintB: mintB}
		err error
	)
	if acc.Auth, err = AuthPDA(programID); err != nil {
		return nil, fmt.Errorf("derive auth: %w", err)
	}
	if acc.Config, err = ConfigPDA(programID, mintB, curveType, index); err != nil {
		return nil, fmt.Errorf("derive config: %w", err)
	}
	if acc.Pool, err = PoolPDA(programID, mintA, mintB); err != nil {
		return nil, fmt.Errorf("derive pool: %w", err)
	}
	if acc.VaultA, err = VaultPDA(programID, acc.Pool, mintA); err != nil {
		return nil, fmt.Errorf("derive vault A: %w", err)
	}
	if acc.VaultB, err = VaultPDA(programID, acc.Pool, mintB); err != nil {
		return nil, fmt.Errorf("derive vault B: %w", err)
	}
	if acc.EventAuthority, err = EventAuthorityPDA(programID); err != nil {
		return nil, fmt.Errorf("derive event authority: %w", err)
	}
	return acc, nil
}
