package program

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrDiscriminator means the account is not of the expected type.
var ErrDiscriminator = errors.New("unexpected account discriminator")

// Pool status values
const (
	PoolStatusTrading   uint8 = 0
	PoolStatusMigrating uint8 = 1
	PoolStatusMigrated  uint8 = 2
)

// VestingSchedule of the locked part of the supply.
type VestingSchedule struct {
	TotalLockedAmount   uint64
	CliffPeriod         uint64
	UnlockPeriod        uint64
	StartTime           uint64
	TotalAllocatedShare uint64
}

// PoolState is the on-chain pool account.
type PoolState struct {
	Discriminator     [8]byte
	Epoch             uint64
	Bump              uint8
	Status            uint8
	MintDecimalsA     uint8
	MintDecimalsB     uint8
	MigrateType       uint8
	Supply            uint64
	TotalSellA        uint64
	VirtualA          uint64
	VirtualB          uint64
	RealA             uint64
	RealB             uint64
	TotalFundRaisingB uint64
	ProtocolFee       uint64
	PlatformFee       uint64
	MigrateFee        uint64
	Vesting           VestingSchedule
	ConfigID          solana.PublicKey
	PlatformID        solana.PublicKey
	MintA             solana.PublicKey
	MintB             solana.PublicKey
	VaultA            solana.PublicKey
	VaultB            solana.PublicKey
	Creator           solana.PublicKey
	Padding           [8]uint64
}

// GlobalConfig is the on-chain launchpad config account.
type GlobalConfig struct {
	Discriminator       [8]byte
	Epoch               uint64
	CurveType           uint8
	Index               uint16
	MigrateFee          uint64
	TradeFeeRate        uint64
	MaxShareFeeRate     uint64
	MinSupplyA          uint64
	MaxLockRate         uint64
	MinSellRateA        uint64
	MinMigrateRateA     uint64
	MinFundRaisingB     uint64
	MintB               solana.PublicKey
	ProtocolFeeOwner    solana.PublicKey
	MigrateFeeOwner     solana.PublicKey
	MigrateToAmmWallet  solana.PublicKey
	MigrateToCpmmWallet solana.PublicKey
	Padding             [16]uint64
}

// DecodePool decodes a pool account.
func DecodePool(data []byte) (*PoolState, error) {
	var p PoolState
	if err := decode(data, PoolStateDiscriminator, &p); err != nil {
		return nil, fmt.Errorf("decode pool: %w", err)
	}
	return &p, nil
}

// DecodeConfig decodes a global config account.
func DecodeConfig(data []byte) (*GlobalConfig, error) {
	var c GlobalConfig
	if err := decode(data, GlobalConfigDiscriminator, &c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &c, nil
}

func decode(data []byte, want [8]byte, dst interface{}) error {
	if len(data) < 8 {
		return fmt.Errorf("insufficient data length: %d", len(data))
	}
	var got [8]byte
	copy(got[:], data[:8])
	if got != want {
		return ErrDiscriminator
	}
	return bin.NewBorshDecoder(data).Decode(dst)
}

// Encode serializes an account, used to build fixtures and to verify layouts.
func Encode(v interface{}) ([]byte, error) {
	return bin.MarshalBorsh(v)
}
