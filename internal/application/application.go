package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"trade_pilot/internal/config"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/namematch"
	"trade_pilot/internal/domain/service/negotiation"
	"trade_pilot/internal/infrastructure/catalog"
	"trade_pilot/internal/infrastructure/ledgerstore"
	"trade_pilot/internal/infrastructure/notifier"
	"trade_pilot/internal/infrastructure/screen"
	"trade_pilot/internal/infrastructure/screen/motion"
	"trade_pilot/internal/report"
	"trade_pilot/internal/server"
	"trade_pilot/internal/transport/bot"
	"trade_pilot/internal/transport/controlfile"
	"trade_pilot/internal/worker"
	"trade_pilot/pkg/application/modules"
	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
	"trade_pilot/pkg/metrics"
	"trade_pilot/pkg/middlewarex"
)

const (
	httpShutdownTimeout = 5 * time.Second
	logFieldMaxLen      = 4096
)

// Run builds one session from cfg, starts its control surfaces and observers,
// and blocks until the session has finalized and every surface has stopped.
func Run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	mode := cfg.Pilot.ParsedMode()

	log = log.With(slog.String(logx.FieldAppName, cfg.App.Name), slog.String(logx.FieldAppVersion, cfg.App.Version))
	ctx = contextx.WithLogger(ctx, log)

	layout, err := config.LoadLayout(cfg.Pilot.LayoutPath, mode)
	if err != nil {
		return fmt.Errorf("config.LoadLayout: %w", err)
	}

	items, err := loadCatalog(ctx, cfg.Pilot, mode)
	if err != nil {
		return err
	}

	ledger, closeLedger, err := ledgerstore.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ledgerstore.Open: %w", err)
	}
	defer closeLedger(ctx)

	perceiver, err := screen.NewPerceiver(screen.OCRConfig{
		Language:    cfg.OCR.Language,
		ScaleFactor: cfg.OCR.ScaleFactor,
	})
	if err != nil {
		return fmt.Errorf("screen.NewPerceiver: %w", err)
	}
	defer perceiver.Close()

	if bounds := screen.DisplayBounds(); !bounds.Empty() {
		log.Info("display detected", slog.String("bounds", bounds.String()))
	}

	actuator := screen.NewActuator(motion.Config{
		JitterPx:     cfg.Motion.JitterPx,
		KeystrokeMin: cfg.Motion.KeystrokeMin,
		KeystrokeMax: cfg.Motion.KeystrokeMax,
		ClickDelay:   cfg.Motion.ClickDelay,
	}).WithSmoothMoves(cfg.Motion.SmoothMoves)

	matcher := namematch.NewMatcher(cfg.Pilot.SimilarityThreshold)

	loop := negotiation.NewLoop(
		perceiver,
		actuator,
		ledger,
		negotiation.NewControl(),
		negotiation.NewBooks(entity.NewBudget(cfg.Pilot.Budget, cfg.Pilot.MinReserve)),
		layout,
	).
		WithMatcher(matcher).
		WithTransportCost(cfg.Pilot.TransportCost).
		WithTaxRate(cfg.Pilot.TaxRate).
		WithMaxSensingFailures(cfg.Pilot.MaxSensingFailures).
		WithActionDelay(cfg.Pilot.ActionDelay)

	strategy, err := newStrategy(mode, items, ledger, matcher)
	if err != nil {
		return err
	}

	session := worker.NewSession(strategy, loop, report.NewWriter(cfg.Pilot.ReportDir))

	g, ctx := errgroup.WithContext(ctx)

	surfacesCtx, stopSurfaces := context.WithCancel(ctx)
	defer stopSurfaces()
	session.Bind(stopSurfaces)

	reg := metrics.NewRegistry()

	if err := runObservers(ctx, g, cfg, session, reg); err != nil {
		return err
	}

	if err := runSurfaces(surfacesCtx, g, cfg, session, reg); err != nil {
		return err
	}

	g.Go(func() error {
		if err := session.Run(ctx); err != nil {
			return fmt.Errorf("session.Run: %w", err)
		}
		return nil
	})

	return g.Wait() //nolint:wrapcheck
}

func loadCatalog(ctx context.Context, cfg config.Pilot, mode entity.Mode) ([]entity.Item, error) {
	items, err := catalog.Load(ctx, cfg.CatalogPath, catalog.Options{
		StartRow:     cfg.StartRow,
		SortByProfit: cfg.SortByProfit,
		TopTierMin:   cfg.TopTierMin,
	})

	// Selling works from the ledger alone; the catalog only adds reference
	// prices for items never bought.
	if mode == entity.ModeSell && errors.Is(err, fs.ErrNotExist) {
		logger(ctx).Warn("no catalog, sell cost basis comes from the ledger only",
			slog.String(logx.FieldPath, cfg.CatalogPath))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}

	return items, nil
}

func newStrategy(mode entity.Mode, items []entity.Item, ledger negotiation.Ledger, matcher namematch.Matcher) (negotiation.Strategy, error) {
	switch mode {
	case entity.ModeManual:
		return negotiation.NewManual(items), nil
	case entity.ModeOrder:
		return negotiation.NewOrder(items), nil
	case entity.ModeSell:
		return negotiation.NewSell(negotiation.NewCostBook(ledger, items).WithMatcher(matcher)), nil
	default:
		return nil, fmt.Errorf("unsupported mode %q", mode)
	}
}

// runObservers subscribes the one-way event consumers. They finish when the
// session closes its event streams.
func runObservers(ctx context.Context, g *errgroup.Group, cfg config.Config, session *worker.Session, reg *prometheus.Registry) error {
	if cfg.HTTP.MetricsAddress != "" {
		observer := notifier.NewMetrics(reg)
		events := session.Subscribe()

		modules.Worker{Name: "metrics"}.Run(ctx, g, func(ctx context.Context) error {
			return observer.Run(ctx, events)
		})
	}

	if cfg.Redis.Enabled() {
		conn := redisConnector(cfg.Redis)
		publisher := notifier.NewRedisPublisher(conn.Client(ctx)).WithChannel(cfg.Redis.Channel)
		events := session.Subscribe()

		modules.Worker{Name: "redis-publisher"}.Run(ctx, g, func(ctx context.Context) error {
			defer conn.Close(context.WithoutCancel(ctx))
			return publisher.Run(ctx, events)
		})
	}

	if cfg.Bot.Enabled() {
		tgNotifier, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.NotifyChat())
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}
		events := session.Subscribe()

		modules.Worker{Name: "telegram-notifier"}.Run(ctx, g, func(ctx context.Context) error {
			return tgNotifier.Run(ctx, events)
		})
	}

	return nil
}

// runSurfaces starts the control surfaces. ctx is cancelled once the session
// has finalized, which releases every binding.
func runSurfaces(ctx context.Context, g *errgroup.Group, cfg config.Config, session *worker.Session, reg *prometheus.Registry) error {
	if cfg.Pilot.ControlFile != "" {
		watcher := controlfile.New(cfg.Pilot.ControlFile, session)
		modules.Worker{Name: "control-file"}.Run(ctx, g, watcher.Run)
	}

	if cfg.Bot.Enabled() && cfg.Bot.AdminID != 0 {
		controlBot, err := bot.New(ctx, cfg.Bot.Token, cfg.Bot.AdminID, session)
		if err != nil {
			return fmt.Errorf("bot.New: %w", err)
		}
		modules.Worker{Name: "control-bot"}.Run(ctx, g, controlBot.Run)
	}

	if cfg.HTTP.ControlAddress != "" {
		router := chi.NewRouter()
		router.Use(
			middlewarex.TraceID,
			middlewarex.Logger,
			middlewarex.RequestLogging(logx.NewSensitiveDataMasker(), logFieldMaxLen),
			middlewarex.ResponseLogging(logx.NewSensitiveDataMasker(), logFieldMaxLen),
			middlewarex.Recovery,
		)
		server.NewServer(server.NewSessionServer(session)).RegisterRoutes(router)

		modules.HTTPServer{ShutdownTimeout: httpShutdownTimeout}.Run(ctx, g, &http.Server{
			Addr:              cfg.HTTP.ControlAddress,
			Handler:           router,
			ReadHeaderTimeout: httpShutdownTimeout,
		})
	}

	if cfg.HTTP.MetricsAddress != "" {
		modules.MetricServer{ListenAddress: cfg.HTTP.MetricsAddress, Gatherer: reg}.Run(ctx, g)
	}

	if cfg.HTTP.ProbeAddress != "" {
		modules.ProbeServer{
			Name:          cfg.App.Name,
			Version:       cfg.App.Version,
			ListenAddress: cfg.HTTP.ProbeAddress,
			Ready:         session.IsRunning,
		}.Run(ctx, g)
	}

	return nil
}
