package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ecoplus-hub/ecoplus/internal/api"
	"github.com/ecoplus-hub/ecoplus/internal/app/account"
	"github.com/ecoplus-hub/ecoplus/internal/app/community"
	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/app/journey"
	"github.com/ecoplus-hub/ecoplus/internal/app/quiz"
	"github.com/ecoplus-hub/ecoplus/internal/health"
	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
	"github.com/ecoplus-hub/ecoplus/internal/realtime"
	"github.com/ecoplus-hub/ecoplus/internal/security"
)

// Daemon is the EcoPlus runtime. It wires together all services.
type Daemon struct {
	Config Config
	Log    *zap.Logger
	DB     *sqlite.DB
	Server *api.Server
	cancel context.CancelFunc

	Keypair *security.Keypair
	Tokens  *security.TokenIssuer
	Health  *health.Checker

	// Engagement
	Streak       *engagement.StreakService
	Badges       *engagement.BadgeEngine
	Activity     *engagement.ActivityService
	Notification *engagement.NotificationService

	// Features
	Quiz     *quiz.Service
	Journeys *journey.Service
	Social   *community.SocialService
	Events   *community.EventService
	Accounts *account.Service

	// Real-time
	Hub   *realtime.Hub
	Relay *realtime.RedisRelay // nil on a single node
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	log, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	dayLoc, err := cfg.Engagement.Location()
	if err != nil {
		return nil, err
	}
	nightLoc, err := cfg.Engagement.NightLocation()
	if err != nil {
		return nil, err
	}

	home := ecoplusHome()
	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Session signing identity (Ed25519), persisted so tokens survive restarts.
	kp, err := security.LoadOrCreateKeypair(home)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	d := &Daemon{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Keypair: kp,
		Tokens:  security.NewTokenIssuer(kp, cfg.Auth.TTL()),
	}

	// ─── Real-time ─────────────────────────────────────────────────────

	d.Hub = realtime.NewHub(log.Named("realtime"), func(origin string) bool {
		return slices.Contains(cfg.API.CORSOrigins, origin)
	})

	// ─── Engagement ────────────────────────────────────────────────────

	d.Streak = engagement.NewStreakService(db, dayLoc)
	d.Notification = engagement.NewNotificationService(db)
	d.Badges = engagement.NewBadgeEngine(db, db, db, log.Named("badges"))
	d.Badges.SetNightLocation(nightLoc)
	d.Badges.OnAward(engagement.BadgeAwardHook(d.Notification, d.Hub, log))
	d.Activity = engagement.NewActivityService(db, d.Streak, d.Badges)

	// ─── Features ──────────────────────────────────────────────────────

	d.Quiz = quiz.NewService(db, d.Badges, log.Named("quiz"))
	d.Journeys = journey.NewService(db)
	d.Social = community.NewSocialService(db, d.Hub)
	d.Events = community.NewEventService(db, d.Notification, log.Named("events"))
	d.Accounts = account.NewService(db, d.Streak, d.Journeys)

	d.Health = health.NewChecker(db, home, d.Quiz, log.Named("health"))

	srv := api.NewServer(api.Services{
		Accounts:      d.Accounts,
		Tokens:        d.Tokens,
		Activity:      d.Activity,
		Quiz:          d.Quiz,
		Journeys:      d.Journeys,
		Social:        d.Social,
		Events:        d.Events,
		Notifications: d.Notification,
		Hub:           d.Hub,
		Health:        d.Health,
	}, log.Named("api"))
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.SetCookieSecure(cfg.API.CookieSecure)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if _, err := d.Quiz.Seed(ctx, false); err != nil {
		d.Log.Warn("question bank seed failed", zap.Error(err))
	}

	go d.Health.Run(ctx)

	if d.Config.Realtime.RedisURL != "" {
		relay, err := realtime.NewRedisRelay(ctx, d.Config.Realtime.RedisURL, d.Config.Realtime.Channel, d.Log.Named("relay"))
		if err != nil {
			// Single-node delivery still works without the relay.
			d.Log.Warn("redis relay unavailable, broadcasting locally", zap.Error(err))
		} else {
			d.Relay = relay
			d.Hub.SetPublisher(relay)
			go func() {
				if err := relay.Run(ctx, d.Hub.Deliver); err != nil && !errors.Is(err, context.Canceled) {
					d.Log.Error("redis relay stopped", zap.Error(err))
				}
			}()
		}
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           d.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		d.Log.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		cancel()
		d.Hub.Close()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	d.Log.Info("EcoPlus serving",
		zap.String("addr", "http://"+addr),
		zap.Bool("metrics", d.Config.Telemetry.Prometheus),
		zap.Bool("redis_relay", d.Relay != nil))

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-done
		d.Close()
		return err
	}
	<-done
	d.Close()
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Relay != nil {
		_ = d.Relay.Close()
		d.Relay = nil
	}
	if d.DB != nil {
		_ = d.DB.Close()
		d.DB = nil
	}
	if d.Log != nil {
		_ = d.Log.Sync()
	}
}
