package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/app"
	"github.com/rovshanmuradov/birthpad/internal/config"
	"github.com/rovshanmuradov/birthpad/internal/events"
	"github.com/rovshanmuradov/birthpad/internal/i18n"
	"github.com/rovshanmuradov/birthpad/internal/launchpad"
	"github.com/rovshanmuradov/birthpad/internal/license"
	"github.com/rovshanmuradov/birthpad/internal/logger"
	"github.com/rovshanmuradov/birthpad/internal/metrics"
	"github.com/rovshanmuradov/birthpad/internal/settings"
	"github.com/rovshanmuradov/birthpad/internal/storage"
	"github.com/rovshanmuradov/birthpad/internal/storage/memory"
	"github.com/rovshanmuradov/birthpad/internal/storage/postgres"
	"github.com/rovshanmuradov/birthpad/internal/tokens"
	"github.com/rovshanmuradov/birthpad/internal/txservice"
	"github.com/rovshanmuradov/birthpad/internal/upload"
	"github.com/rovshanmuradov/birthpad/internal/wallet"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

const (
	busBufferSize   = 256
	shutdownTimeout = 5 * time.Second
	// tuiLogFile receives the log while the terminal is taken by the TUI.
	tuiLogFile = "birthpad.log"
)

// envOptions selects what setup wires for a command.
type envOptions struct {
	// console keeps the colored stdout log core; the TUI disables it.
	console bool
	// connect initialises the session: RPC selection and chain time.
	connect bool
	// trading loads the wallet, checks the license and builds the launchpad service.
	trading bool
}

// env is everything one command run owns. Close releases it.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	bus      *events.Bus
	prefs    *settings.Store
	backend  *api.Client
	session  *app.Session
	tokens   *tokens.Store
	history  storage.Storage
	i18n     *i18n.Manager
	uploader upload.Uploader
	wallet   *wallet.Wallet
	lp       *launchpad.Service

	printer *toastPrinter
	metrics *metrics.Collector
}

func setup(ctx context.Context, cmd *cobra.Command, opts envOptions) (*env, error) {
	flags := cmd.Flags()
	cfgPath, _ := flags.GetString("config")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	debug, _ := flags.GetBool("debug")
	if walletPath, _ := flags.GetString("wallet"); walletPath != "" {
		cfg.WalletPath = walletPath
	}

	logOpts := logger.Options{
		Debug:     cfg.DebugLogging || debug,
		Console:   opts.console,
		File:      cfg.LogFile,
		SentryDSN: cfg.SentryDSN,
	}
	if !opts.console && logOpts.File == "" {
		logOpts.File = tuiLogFile
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	e := &env{cfg: cfg, logger: log, bus: events.NewBus(log, busBufferSize)}
	if opts.console {
		e.printer = newToastPrinter(cmd.OutOrStdout())
		e.printer.Attach(e.bus)
	}

	if cfg.MetricsAddr != "" && opts.trading {
		e.metrics = metrics.NewCollector(metrics.DefaultNamespace)
		e.metrics.Attach(e.bus)
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, e.metrics, log); err != nil {
				log.Warn("Metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	if err := e.wire(ctx, cmd, opts); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) wire(ctx context.Context, cmd *cobra.Command, opts envOptions) error {
	cfg, log := e.cfg, e.logger

	prefs, err := settings.Open(cfg.SettingsPath, log)
	if err != nil {
		return err
	}
	e.prefs = prefs

	e.i18n = i18n.NewManager(prefs, e.bus, log)
	lang := cfg.Locale
	if stored, ok := prefs.Locale(); ok {
		lang = stored
	}
	if _, err := e.i18n.ChangeLanguage(lang); err != nil {
		log.Warn("Failed to apply locale", zap.String("lang", lang), zap.Error(err))
	}

	e.backend = api.NewClient(api.DefaultURLConfig(cfg.BaseHost, cfg.MintHost), log)
	lpOpts, err := launchpad.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	seeds := make([]api.RPCNode, 0, len(cfg.RPCList))
	for i, u := range cfg.RPCList {
		seeds = append(seeds, api.RPCNode{URL: u, Name: fmt.Sprintf("config-%d", i+1)})
	}
	e.session = app.NewSession(app.Options{
		Prod:             true,
		AppVersion:       version,
		RPCNodes:         seeds,
		LaunchpadProgram: lpOpts.ProgramID,
		Retries:          cfg.Retries,
	}, e.backend, prefs, nil, e.bus, log)

	if opts.connect {
		if err := e.session.Init(ctx); err != nil {
			return fmt.Errorf("select rpc node: %w", err)
		}
		if _, err := e.session.CheckAppVersion(ctx); err != nil {
			log.Debug("Version check failed", zap.Error(err))
		}
	}

	e.tokens = tokens.NewStore(log)
	if opts.connect {
		if err := e.tokens.Refresh(ctx, e.backend); err != nil {
			log.Warn("Token list unavailable", zap.Error(err))
		}
	}

	if !opts.trading {
		return nil
	}

	if err := license.NewGate(cfg.Keygen, cfg.License, log).Check(ctx); err != nil {
		return err
	}

	if cfg.PostgresURL != "" {
		e.history, err = postgres.NewStorage(ctx, cfg.PostgresURL, log)
		if err != nil {
			return err
		}
	} else {
		e.history = memory.New()
	}

	if cfg.WalletPath == "" {
		return fmt.Errorf("wallet_path is not set")
	}
	e.wallet, err = wallet.LoadFromFile(cfg.WalletPath)
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}

	e.uploader, err = upload.New(cfg.Upload, log)
	if err != nil {
		// загрузка нужна только для create с картинкой
		log.Debug("Upload provider unavailable", zap.Error(err))
		e.uploader = nil
	}

	lpOpts.Slippage = prefs.Slippage(settings.SlippageLaunchpad)
	e.lp = launchpad.New(lpOpts, e.session, e.backend, e.bus, e.history, log)

	validator := txservice.New(cfg.TxValidation, log)
	e.lp.SetSigner(txservice.NewValidatingSigner(e.wallet, validator, e.rpcName))
	if authToken, _ := cmd.Flags().GetString("auth-token"); authToken != "" {
		e.lp.SetToken(authToken)
	}
	return nil
}

// rpcName names the node in use for the validation service.
func (e *env) rpcName() string {
	st := e.session.State()
	for _, n := range st.RPCs {
		if n.URL == st.RPCURL && n.Name != "" {
			return n.Name
		}
	}
	return "userChange"
}

// Close flushes pending events and releases connections.
func (e *env) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if e.metrics != nil {
		e.metrics.Close()
	}
	if e.bus != nil {
		if err := e.bus.Shutdown(ctx); err != nil {
			e.logger.Debug("Event bus shutdown", zap.Error(err))
		}
	}
	if e.session != nil {
		_ = e.session.Close()
	}
	if e.history != nil {
		e.history.Close()
	}
	_ = e.logger.Sync()
}
