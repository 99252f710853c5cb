package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"guild_warden/pkg/config"
	"guild_warden/pkg/escalation"
	"guild_warden/pkg/events"
	"guild_warden/pkg/health"
	"guild_warden/pkg/logging"
	"guild_warden/pkg/moderation"
	"guild_warden/pkg/platform"
	"guild_warden/pkg/poll"
	"guild_warden/pkg/schedule"
	"guild_warden/pkg/ticket"
)

var (
	configFile = flag.String("config", "config.yaml", "Path to configuration file")
	debug      = flag.Bool("debug", false, "Enable debug mode")
)

// App bundles the engines and their supporting services.
type App struct {
	cfg       *config.Config
	polls     *poll.Engine
	tickets   *ticket.Workflow
	guard     *moderation.Guard
	actions   *moderation.Actions
	router    *events.Router
	scheduler *schedule.Scheduler
	healthSrv *health.Server
	logger    *zap.Logger
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Debug = true
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := initializeApp(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	app.start(ctx)
	setupGracefulShutdown(cancel, logger)

	<-ctx.Done()
	app.stop(logger)
}

func initializeApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	// The dry-run adapter logs outbound side effects; a real chat
	// gateway replaces it by implementing the same three ports.
	adapter := platform.NewDryRun(logger)

	scheduler := schedule.NewScheduler(logger)
	tracker := escalation.NewTracker(cfg.Escalation, logger)
	polls := poll.NewEngine(adapter, scheduler, logger)
	tickets := ticket.NewWorkflow(cfg.Tickets, cfg.Roles.Staff, adapter, logger)
	guard := moderation.NewGuard(tracker, adapter, cfg.Roles, cfg.Channels, logger)
	actions := moderation.NewActions(adapter, cfg.Roles, logger)
	router := events.NewRouter(polls, tickets, guard, logger)

	statusFn := func() health.Status {
		pollStats := polls.GetStats()
		ticketStats := tickets.GetStats()
		return health.Status{
			ActivePolls:    pollStats.ActivePolls,
			OpenTickets:    ticketStats.OpenTickets,
			ActiveSessions: ticketStats.ActiveSessions,
			TrackedUsers:   tracker.TrackedUsers(),
		}
	}
	healthSrv := health.NewServer(cfg.Health, statusFn, logger)

	app := &App{
		cfg:       cfg,
		polls:     polls,
		tickets:   tickets,
		guard:     guard,
		actions:   actions,
		router:    router,
		scheduler: scheduler,
		healthSrv: healthSrv,
		logger:    logger,
	}

	if err := app.registerJobs(); err != nil {
		return nil, fmt.Errorf("registering recurring jobs: %w", err)
	}

	return app, nil
}

func (a *App) registerJobs() error {
	if url := a.cfg.Health.KeepAliveURL; url != "" {
		_, err := a.scheduler.Schedule(a.cfg.Jobs.KeepAliveSchedule, "keep-alive", func() {
			resp, err := http.Get(url)
			if err != nil {
				a.logger.Warn("Keep-alive ping failed", zap.Error(err))
				return
			}
			resp.Body.Close()
		})
		if err != nil {
			return err
		}
	}

	_, err := a.scheduler.Schedule(a.cfg.Jobs.StatsSchedule, "engine-stats", func() {
		pollStats := a.polls.GetStats()
		ticketStats := a.tickets.GetStats()
		a.logger.Info("Engine stats",
			zap.Int("activePolls", pollStats.ActivePolls),
			zap.Int64("votesApplied", pollStats.VotesApplied),
			zap.Int("openTickets", ticketStats.OpenTickets),
			zap.Int64("ticketsClosed", ticketStats.TicketsClosed),
			zap.Int("trackedUsers", a.guard.TrackedUsers()))
	})
	return err
}

func (a *App) start(ctx context.Context) {
	a.scheduler.Start()

	go a.router.Run(ctx)

	go func() {
		if err := a.healthSrv.Start(); err != nil {
			a.logger.Error("Keep-alive server stopped", zap.Error(err))
		}
	}()

	a.logger.Info("Warden started",
		zap.String("environment", a.cfg.Environment),
		zap.Int("healthPort", a.cfg.Health.Port))
}

func (a *App) stop(logger *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Keep-alive server shutdown failed", zap.Error(err))
	}
	a.scheduler.Stop()

	logger.Info("Warden stopped")
}

func setupGracefulShutdown(cancel context.CancelFunc, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
