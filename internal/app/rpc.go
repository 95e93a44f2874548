package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/bitly/go-simplejson"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/blockchain"
	"github.com/rovshanmuradov/birthpad/internal/events"
	"github.com/rovshanmuradov/birthpad/internal/settings"
)

const switchRPCTitle = "Switch Rpc Node"

// ValidURL accepts absolute http(s) URLs.
func ValidURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FetchRPCs loads the backend RPC list and selects a node. A stored custom
// URL is tried first, then the list with the stored node moved to the front.
func (s *Session) FetchRPCs(ctx context.Context) error {
	if !s.rpcLoading.CompareAndSwap(false, true) {
		return nil
	}
	defer s.rpcLoading.Store(false)

	nodes, err := s.backend.RPCs(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state.RPCs = append([]api.RPCNode(nil), nodes...)
	s.mu.Unlock()

	var pref settings.RPCPreference
	if s.prefs != nil {
		pref = s.prefs.RPCPreference(s.prod)
	}

	if pref.Node == nil && ValidURL(pref.URL) {
		if s.SetRPCURL(ctx, pref.URL, true, true) {
			return nil
		}
	}

	ready := append([]api.RPCNode(nil), nodes...)
	if pref.Node != nil {
		name := pref.Node.Name
		sort.SliceStable(ready, func(i, j int) bool {
			return ready[i].Name == name && ready[j].Name != name
		})
	}
	for i, n := range ready {
		if s.SetRPCURL(ctx, n.URL, true, i != len(ready)-1) {
			return nil
		}
	}

	s.logger.Error("All RPCs failed", zap.Int("count", len(ready)))
	return ErrAllRPCsFailed
}

// SetRPCURL validates rawURL with getEpochInfo and switches to it. It reports
// whether the node is in use afterwards.
func (s *Session) SetRPCURL(ctx context.Context, rawURL string, skipToast, skipError bool) bool {
	if rawURL == s.State().RPCURL && s.Chain() != nil {
		if !skipToast {
			s.toast(events.StatusInfo, switchRPCTitle, "Rpc node already in use")
		}
		return true
	}

	fail := func(err error) bool {
		s.logger.Warn("RPC node rejected", zap.String("url", rawURL), zap.Error(err))
		if !skipError {
			s.toast(events.StatusError, "Switch Rpc Node error", "Invalid rpc node")
		}
		return false
	}

	if !ValidURL(rawURL) {
		return fail(fmt.Errorf("invalid url %q", rawURL))
	}
	if !s.rpcValidating.CompareAndSwap(false, true) {
		if !skipToast {
			s.toast(events.StatusWarning, switchRPCTitle, "Validating Rpc node..")
		}
		return false
	}

	client := s.dial(rawURL)
	_, err := backoff.Retry(ctx, func() (*blockchain.EpochInfo, error) {
		return client.GetEpochInfo(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.retryInterval)),
		backoff.WithMaxTries(3))
	s.rpcValidating.Store(false)
	if err != nil {
		return fail(err)
	}

	var node *api.RPCNode
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fail(ErrClosed)
	}
	for i := range s.state.RPCs {
		if s.state.RPCs[i].URL == rawURL {
			n := s.state.RPCs[i]
			node = &n
			break
		}
	}
	s.state.RPCURL = rawURL
	s.state.WSURL = ""
	if node != nil {
		s.state.WSURL = node.WS
	}
	s.chain = client
	s.epoch = nil
	s.epochAt = time.Time{}
	wsURL := s.state.WSURL
	s.mu.Unlock()

	if s.prefs != nil {
		pref := settings.RPCPreference{URL: rawURL}
		if node != nil {
			pref.Node = &settings.RPCNodeRef{Name: node.Name, WS: node.WS, Weight: node.Weight, Batch: node.Batch}
		}
		if err := s.prefs.SetRPCPreference(s.prod, pref); err != nil {
			s.logger.Warn("Failed to persist RPC preference", zap.Error(err))
		}
	}

	name := ""
	if node != nil {
		name = node.Name
	}
	s.logger.Info("RPC node switched", zap.String("url", rawURL), zap.String("name", name))
	if err := s.bus.Publish(events.RPCChangedEvent{BaseEvent: events.NewBase(events.RPCChanged), URL: rawURL, WSURL: wsURL, Name: name}); err != nil {
		s.logger.Debug("Event dropped", zap.Error(err))
	}
	if !skipToast {
		s.toast(events.StatusSuccess, "Switch Rpc Node Success", "Rpc node switched")
	}
	return true
}

// EpochInfo returns the epoch info, refreshed at most once per TTL. While a
// refresh is running other callers get the cached value, or wait for the
// refresh when nothing is cached yet.
func (s *Session) EpochInfo(ctx context.Context) (*blockchain.EpochInfo, error) {
	s.mu.Lock()
	chain := s.chain
	if chain == nil {
		s.mu.Unlock()
		return nil, ErrNoConnection
	}
	if s.epoch != nil && (s.epochLoad || time.Since(s.epochAt) <= s.epochTTL) {
		cached := s.epoch
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	v, err, _ := s.epochFlight.Do("epoch", func() (interface{}, error) {
		return s.refreshEpoch(ctx, chain)
	})
	info, _ := v.(*blockchain.EpochInfo)
	if err == nil && info == nil {
		return nil, fmt.Errorf("get epoch info: empty result")
	}
	return info, err
}

func (s *Session) refreshEpoch(ctx context.Context, chain blockchain.Client) (*blockchain.EpochInfo, error) {
	s.mu.Lock()
	s.epochLoad = true
	s.mu.Unlock()

	info, err := backoff.Retry(ctx, func() (*blockchain.EpochInfo, error) {
		return chain.GetEpochInfo(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.retryInterval)),
		backoff.WithMaxTries(s.retries))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epochLoad = false
	if err != nil {
		return s.epoch, fmt.Errorf("get epoch info: %w", err)
	}
	s.epoch = info
	s.epochAt = time.Now()
	return info, nil
}

// FetchBlockSlotCount samples recent performance and stores the average
// number of slots per second.
func (s *Session) FetchBlockSlotCount(ctx context.Context) (float64, error) {
	rpcURL := s.State().RPCURL
	if rpcURL == "" {
		return 0, ErrNoConnection
	}

	req := simplejson.New()
	req.Set("id", "getRecentPerformanceSamples")
	req.Set("jsonrpc", "2.0")
	req.Set("method", "getRecentPerformanceSamples")
	req.Set("params", []int{4})
	body, err := req.MarshalJSON()
	if err != nil {
		return 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, rpcURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("performance samples: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &api.HTTPError{Status: resp.StatusCode, Body: string(raw)}
	}

	js, err := simplejson.NewJson(raw)
	if err != nil {
		return 0, fmt.Errorf("decode performance samples: %w", err)
	}
	samples := js.Get("result")
	n := len(samples.MustArray())
	if n == 0 {
		return 0, fmt.Errorf("no performance samples")
	}
	var total float64
	for i := 0; i < n; i++ {
		total += samples.GetIndex(i).Get("numSlots").MustFloat64()
	}
	perSecond := total / float64(n) / 60

	s.mu.Lock()
	s.state.BlockSlotsPerSecond = perSecond
	s.mu.Unlock()
	return perSecond, nil
}
