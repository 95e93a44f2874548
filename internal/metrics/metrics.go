// Package metrics exports launchpad transaction metrics for Prometheus.
// The collector only listens to the event bus, so nothing in the trading
// path depends on it.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

const DefaultNamespace = "birthpad"

// Subscriber is the part of the event bus the collector needs.
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler) events.Subscription
}

// Collector owns its registry so several collectors can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	transactions    *prometheus.CounterVec
	confirmDuration *prometheus.HistogramVec
	toasts          *prometheus.CounterVec
	rpcSwitches     *prometheus.CounterVec

	mu      sync.Mutex
	pending map[string]time.Time // signature -> sent at
	subs    []events.Subscription
}

// NewCollector registers the launchpad metrics plus the Go runtime collectors.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		pending:  make(map[string]time.Time),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launchpad",
			Name:      "transactions_total",
			Help:      "Launchpad transactions by action and lifecycle status",
		}, []string{"action", "status"}),
		confirmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "launchpad",
			Name:      "confirmation_seconds",
			Help:      "Time from send to confirmation or failure",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"action", "status"}),
		toasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "User notifications by severity",
		}, []string{"status"}),
		rpcSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "rpc_switches_total",
			Help:      "Successful RPC node switches by node name",
		}, []string{"node"}),
	}
	reg.MustRegister(
		c.transactions,
		c.confirmDuration,
		c.toasts,
		c.rpcSwitches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Attach subscribes the collector to bus.
func (c *Collector) Attach(bus Subscriber) {
	c.subs = append(c.subs,
		bus.Subscribe(events.TxSent, events.OnTxStatus(c.observeTx)),
		bus.Subscribe(events.TxConfirmed, events.OnTxStatus(c.observeTx)),
		bus.Subscribe(events.TxFailed, events.OnTxStatus(c.observeTx)),
		bus.Subscribe(events.Toast, events.OnToast(func(ev events.ToastEvent) {
			c.toasts.WithLabelValues(string(ev.Status)).Inc()
		})),
		bus.Subscribe(events.RPCChanged, events.HandlerFunc(func(_ context.Context, e events.Event) error {
			if ev, ok := e.(events.RPCChangedEvent); ok {
				name := ev.Name
				if name == "" {
					name = "custom"
				}
				c.rpcSwitches.WithLabelValues(name).Inc()
			}
			return nil
		})),
	)
}

// Close unsubscribes from the bus.
func (c *Collector) Close() {
	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
}

func (c *Collector) observeTx(ev events.TxStatusEvent) {
	action := ev.Meta.Action
	if action == "" {
		action = "unknown"
	}
	status := strings.TrimPrefix(string(ev.Type()), "tx.")
	c.transactions.WithLabelValues(action, status).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Type() == events.TxSent {
		c.pending[ev.Signature] = ev.Timestamp()
		return
	}
	if sentAt, ok := c.pending[ev.Signature]; ok {
		delete(c.pending, ev.Signature)
		c.confirmDuration.WithLabelValues(action, status).Observe(ev.Timestamp().Sub(sentAt).Seconds())
	}
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, c *Collector, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
