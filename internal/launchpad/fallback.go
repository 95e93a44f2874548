package launchpad

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/blockchain"
	"github.com/rovshanmuradov/birthpad/internal/blockchain/solbc"
	"github.com/rovshanmuradov/birthpad/internal/txservice"
	"github.com/rovshanmuradov/birthpad/internal/wallet"
)

// ErrAllCandidatesFailed is matched by the error returned when no platform id
// produced a transaction that simulates cleanly.
var ErrAllCandidatesFailed = errors.New("all platformIds failed simulation")

// Attempt stages
const (
	StageBuild    = "build"
	StageCompile  = "compile"
	StageSign     = "sign"
	StageSimulate = "simulate"
)

// compileV0 builds a versioned (v0) transaction without lookup tables.
func compileV0(instructions []solana.Instruction, blockhash solana.Hash, payer solana.PublicKey) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, err
	}
	tx.Message.SetVersion(solana.MessageVersionV0)
	return tx, nil
}

// Attempt is the outcome of one candidate.
type Attempt struct {
	PlatformID solana.PublicKey
	Stage      string
	Err        error
	Logs       []string
	Units      uint64
}

// Succeeded reports whether the candidate passed simulation.
func (a Attempt) Succeeded() bool { return a.Err == nil }

// FallbackError is returned when every candidate failed.
type FallbackError struct {
	Action   string
	Attempts []Attempt
}

func (e *FallbackError) Error() string {
	if e.Action == ActionBuy {
		return "All platformIds failed simulation for buy"
	}
	return "All platformIds failed simulation"
}

// Causes merges the per-candidate errors.
func (e *FallbackError) Causes() error {
	var result *multierror.Error
	for _, a := range e.Attempts {
		if a.Err != nil {
			result = multierror.Append(result, fmt.Errorf("%s %s: %w", a.PlatformID, a.Stage, a.Err))
		}
	}
	return result.ErrorOrNil()
}

func (e *FallbackError) Unwrap() []error {
	errs := []error{ErrAllCandidatesFailed}
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// instructionBuilder builds the trade instruction for one platform id.
type instructionBuilder func(platformID solana.PublicKey) (solana.Instruction, error)

// submission is the transaction that passed simulation and was sent.
type submission struct {
	Signature  solana.Signature
	PlatformID solana.PublicKey
	Tx         *solana.Transaction
	Attempts   []Attempt
}

// submitFirstSimulatable tries candidates strictly in order. For each one it
// appends the built instruction to base, signs, and simulates. The first clean
// simulation is sent with preflight skipped; later candidates are not touched.
// A validation service rejection aborts the loop.
func (s *Service) submitFirstSimulatable(
	ctx context.Context,
	client blockchain.Client,
	signer wallet.Signer,
	action string,
	base []solana.Instruction,
	blockhash solana.Hash,
	candidates []solana.PublicKey,
	build instructionBuilder,
) (*submission, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	attempts := make([]Attempt, 0, len(candidates))
	fail := func(pid solana.PublicKey, stage string, err error, logs []string) {
		s.logger.Warn("Simulation failed for platformId",
			zap.String("action", action),
			zap.String("platform_id", pid.String()),
			zap.String("stage", stage),
			zap.Error(err))
		attempts = append(attempts, Attempt{PlatformID: pid, Stage: stage, Err: err, Logs: logs})
	}

	for _, pid := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ix, err := build(pid)
		if err != nil {
			fail(pid, StageBuild, err, nil)
			continue
		}

		instructions := make([]solana.Instruction, 0, len(base)+1)
		instructions = append(instructions, base...)
		instructions = append(instructions, ix)

		tx, err := compileV0(instructions, blockhash, signer.Address())
		if err != nil {
			fail(pid, StageCompile, err, nil)
			continue
		}

		if err := signer.SignTransaction(tx); err != nil {
			if errors.Is(err, txservice.ErrRejected) {
				return nil, err
			}
			fail(pid, StageSign, err, nil)
			continue
		}

		res, err := client.SimulateTransaction(ctx, tx)
		if err != nil {
			fail(pid, StageSimulate, solbc.DescribeRPCError(err), nil)
			continue
		}
		if err := solbc.DescribeSimulation(res); err != nil {
			fail(pid, StageSimulate, err, res.Logs)
			continue
		}

		attempts = append(attempts, Attempt{PlatformID: pid, Stage: StageSimulate, Logs: res.Logs, Units: res.UnitsConsumed})
		s.logger.Info("Using platformId",
			zap.String("action", action),
			zap.String("platform_id", pid.String()),
			zap.Uint64("units", res.UnitsConsumed))

		sig, err := client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{SkipPreflight: true})
		if err != nil {
			return nil, fmt.Errorf("send transaction: %w", solbc.DescribeRPCError(err))
		}
		return &submission{Signature: sig, PlatformID: pid, Tx: tx, Attempts: attempts}, nil
	}

	ferr := &FallbackError{Action: action, Attempts: attempts}
	s.logger.Error(ferr.Error(), zap.Int("candidates", len(candidates)), zap.NamedError("causes", ferr.Causes()))
	return nil, ferr
}
