package app

import (
	"context"
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/types"
)

// FetchChainTime stores the server clock offset in ms. Failures reset it to 0.
func (s *Session) FetchChainTime(ctx context.Context) int64 {
	offset, err := s.backend.ChainTimeOffset(ctx)
	if err != nil {
		s.logger.Debug("Chain time unavailable", zap.Error(err))
		offset = 0
	}
	s.mu.Lock()
	s.state.ChainTimeOffset = offset
	s.mu.Unlock()
	return offset
}

// FetchPriorityFee loads the suggested fee per level.
func (s *Session) FetchPriorityFee(ctx context.Context) (types.FeeConfig, error) {
	fee, err := s.backend.AutoFee(ctx)
	if err != nil {
		return nil, err
	}
	cfg := types.FeeConfigFromLamports(fee.Default.M, fee.Default.H, fee.Default.VH)
	s.mu.Lock()
	s.state.FeeConfig = cfg
	s.mu.Unlock()
	return cfg, nil
}

// PriorityFee is the fee in SOL to attach to the next transaction. It is nil
// in exact mode without a user fee.
func (s *Session) PriorityFee() *decimal.Decimal {
	st := s.State()
	var userFee *decimal.Decimal
	if st.TransactionFee != "" {
		if d, err := decimal.NewFromString(st.TransactionFee); err == nil {
			userFee = &d
		}
	}
	return types.ResolvePriorityFee(st.PriorityMode, st.PriorityLevel, userFee, st.FeeConfig)
}

// SetTransactionFee stores the user's fee in SOL.
func (s *Session) SetTransactionFee(fee string) error {
	if _, err := decimal.NewFromString(fee); err != nil {
		return fmt.Errorf("invalid fee %q: %w", fee, err)
	}
	s.mu.Lock()
	s.state.TransactionFee = fee
	s.mu.Unlock()
	if s.prefs == nil {
		return nil
	}
	return s.prefs.SetTransactionFee(fee)
}

// SetPriority stores the priority level and mode.
func (s *Session) SetPriority(level types.PriorityLevel, mode types.PriorityMode) error {
	s.mu.Lock()
	s.state.PriorityLevel = level
	s.state.PriorityMode = mode
	s.mu.Unlock()
	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.SetPriorityLevel(int(level)); err != nil {
		return err
	}
	return s.prefs.SetPriorityMode(int(mode))
}

// canonicalVersion turns "V3.0.2" into "v3.0.2".
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if v[0] == 'V' || v[0] == 'v' {
		return "v" + v[1:]
	}
	return "v" + v
}

// CheckAppVersion sets NeedRefresh when the client is older than the latest release.
func (s *Session) CheckAppVersion(ctx context.Context) (bool, error) {
	v, err := s.backend.AppVersion(ctx)
	if err != nil {
		return false, err
	}
	current := canonicalVersion(s.State().AppVersion)
	latest := canonicalVersion(v.Latest)
	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return false, fmt.Errorf("cannot compare versions %q and %q", s.State().AppVersion, v.Latest)
	}
	need := semver.Compare(current, latest) < 0

	s.mu.Lock()
	s.state.NeedRefresh = need
	s.mu.Unlock()
	if need {
		s.logger.Info("New version available", zap.String("current", current), zap.String("latest", latest))
	}
	return need, nil
}

// SetURLConfig overrides the non-empty fields of partial.
func (s *Session) SetURLConfig(partial api.URLConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := s.state.URLs
	if err := mergo.Merge(&merged, partial, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge url config: %w", err)
	}
	s.state.URLs = merged
	s.backend.SetURLs(merged)
	return nil
}
