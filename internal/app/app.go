// Package app wires all haaldus subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject fake implementations via functional options
// (WithScoreEvents, WithTranscriber, etc.). When an option is not provided,
// New creates real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mkeskkula/haaldus/internal/auth"
	"github.com/mkeskkula/haaldus/internal/catalog"
	"github.com/mkeskkula/haaldus/internal/config"
	"github.com/mkeskkula/haaldus/internal/health"
	"github.com/mkeskkula/haaldus/internal/httpapi"
	"github.com/mkeskkula/haaldus/internal/observe"
	"github.com/mkeskkula/haaldus/internal/progress"
	"github.com/mkeskkula/haaldus/internal/recordings"
	"github.com/mkeskkula/haaldus/internal/scoring"
	"github.com/mkeskkula/haaldus/internal/store"
	"github.com/mkeskkula/haaldus/internal/store/postgres"
	"github.com/mkeskkula/haaldus/pkg/provider/asr"
	asrmock "github.com/mkeskkula/haaldus/pkg/provider/asr/mock"
	"github.com/mkeskkula/haaldus/pkg/provider/asr/whisper"
)

// cleanupInterval is how often the recording janitor sweeps the uploads
// directory for files past retention.
const cleanupInterval = time.Hour

// App owns all subsystem lifetimes for the pronunciation-practice server.
type App struct {
	cfg *config.Config

	// Subsystems — initialised in New, torn down in Shutdown.
	catalog    *catalog.Catalog
	engine     *scoring.Engine
	aggregator *progress.Aggregator
	events     store.ScoreEvents
	unlocks    store.Achievements
	recordings *recordings.Store
	transcribe asr.Provider // nil when no ASR backend is configured
	asrProbe   any          // innermost provider, before the concurrency wrapper
	metrics    *observe.Metrics

	pool    *pgxpool.Pool
	handler http.Handler

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithScoreEvents injects a score-event store instead of connecting to
// PostgreSQL.
func WithScoreEvents(s store.ScoreEvents) Option {
	return func(a *App) { a.events = s }
}

// WithAchievements injects an achievement store instead of connecting to
// PostgreSQL.
func WithAchievements(s store.Achievements) Option {
	return func(a *App) { a.unlocks = s }
}

// WithTranscriber injects an ASR provider instead of creating one from
// config.
func WithTranscriber(p asr.Provider) Option {
	return func(a *App) { a.transcribe = p }
}

// WithCatalog injects a word catalog instead of loading one from config.
func WithCatalog(c *catalog.Catalog) Option {
	return func(a *App) { a.catalog = c }
}

// WithMetrics injects a metrics bundle instead of using the global meter
// provider.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. Use Option functions
// to inject test doubles for any subsystem.
//
// New performs all initialisation synchronously: catalog loading, database
// connection and migration, ASR provider construction, and route
// registration. The returned App is ready to Run.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}

	if err := a.initCatalog(); err != nil {
		return nil, fmt.Errorf("app: init catalog: %w", err)
	}
	if err := a.initStores(ctx); err != nil {
		return nil, fmt.Errorf("app: init stores: %w", err)
	}
	if err := a.initASR(); err != nil {
		return nil, fmt.Errorf("app: init asr: %w", err)
	}
	if err := a.initRecordings(); err != nil {
		return nil, fmt.Errorf("app: init recordings: %w", err)
	}

	a.initScoring()
	a.aggregator = progress.New(a.events, a.unlocks)
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	a.handler = a.buildHandler()
	return a, nil
}

// initCatalog loads the word catalog from the configured file, falling back
// to the built-in one.
func (a *App) initCatalog() error {
	if a.catalog != nil {
		return nil
	}

	if path := a.cfg.Catalog.Path; path != "" {
		c, err := catalog.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load catalog %q: %w", path, err)
		}
		a.catalog = c
		slog.Info("loaded word catalog", "path", path, "levels", c.Levels())
		return nil
	}

	c, err := catalog.Default()
	if err != nil {
		return err
	}
	a.catalog = c
	return nil
}

// initStores connects to PostgreSQL, runs migrations, and creates the event
// and achievement stores, unless both were injected.
func (a *App) initStores(ctx context.Context) error {
	if a.events != nil && a.unlocks != nil {
		return nil // both injected
	}

	dsn := a.cfg.Database.DSN
	if dsn == "" {
		return fmt.Errorf("database.dsn is required when stores are not injected")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	a.pool = pool
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	if a.events == nil {
		a.events = postgres.NewScoreEventStore(pool)
	}
	if a.unlocks == nil {
		a.unlocks = postgres.NewAchievementStore(pool)
	}
	return nil
}

// initASR builds the configured speech-recognition backend. An empty
// provider name leaves transcription disabled; text-only scoring keeps
// working.
func (a *App) initASR() error {
	if a.transcribe != nil {
		return nil
	}
	if a.cfg.ASR.Provider == "" {
		slog.Warn("no asr provider configured; audio submissions will be rejected, text scoring remains available")
		return nil
	}

	var inner asr.Provider
	switch a.cfg.ASR.Provider {
	case "whisper":
		var opts []whisper.Option
		if a.cfg.ASR.Model != "" {
			opts = append(opts, whisper.WithModel(a.cfg.ASR.Model))
		}
		if a.cfg.ASR.Language != "" {
			opts = append(opts, whisper.WithLanguage(a.cfg.ASR.Language))
		}
		p, err := whisper.New(a.cfg.ASR.ServerURL, opts...)
		if err != nil {
			return err
		}
		inner = p

	case "whisper-native":
		var opts []whisper.NativeOption
		if a.cfg.ASR.Language != "" {
			opts = append(opts, whisper.WithNativeLanguage(a.cfg.ASR.Language))
		}
		p, err := whisper.NewNative(a.cfg.ASR.ModelPath, opts...)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, p.Close)
		inner = p

	case "mock":
		inner = &asrmock.Provider{}

	default:
		return fmt.Errorf("unknown asr provider %q", a.cfg.ASR.Provider)
	}

	a.asrProbe = inner
	a.transcribe = asr.NewBounded(inner, a.cfg.ASR.MaxConcurrent, a.cfg.ASR.Timeout.Std())
	slog.Info("asr provider ready", "provider", a.cfg.ASR.Provider)
	return nil
}

// initRecordings creates the uploads store.
func (a *App) initRecordings() error {
	if a.recordings != nil {
		return nil
	}

	dir := a.cfg.Storage.UploadsDir
	if dir == "" {
		dir = "uploads"
	}
	s, err := recordings.NewStore(dir)
	if err != nil {
		return fmt.Errorf("create uploads store: %w", err)
	}
	a.recordings = s
	return nil
}

// initScoring builds the scoring engine with the configured prosody variant.
func (a *App) initScoring() {
	var opts []scoring.Option
	if a.cfg.Scoring.Prosody == config.ProsodyBaseline {
		opts = append(opts, scoring.WithProsodyScorer(scoring.BaselineProsody{}))
	}
	a.engine = scoring.NewEngine(opts...)
}

// buildHandler assembles the full route table: the API surface, health
// probes, and the Prometheus scrape endpoint, all behind the tracing
// middleware.
func (a *App) buildHandler() http.Handler {
	mux := http.NewServeMux()

	srv := httpapi.NewServer(
		a.catalog,
		a.engine,
		a.aggregator,
		a.events,
		a.recordings,
		a.transcribe,
		auth.StaticVerifier(a.cfg.Auth.Tokens),
		a.metrics,
	)
	srv.Register(mux)

	checkers := []health.Checker{}
	if a.pool != nil {
		checkers = append(checkers, health.DatabaseChecker(a.pool))
	}
	if a.transcribe != nil {
		probe := a.asrProbe
		if probe == nil {
			probe = a.transcribe
		}
		checkers = append(checkers, health.ASRChecker(probe))
	}
	health.New(checkers...).Register(mux)

	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(a.metrics)(mux)
}

// Handler returns the fully assembled route table. Exposed for tests that
// drive the App through httptest.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP on the configured listen address and blocks until ctx is
// cancelled or the server fails. The recording janitor runs alongside,
// sweeping expired uploads. On cancellation the server drains in-flight
// requests before Run returns.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		a.runJanitor(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(drainCtx)
	})

	slog.Info("server running", "addr", a.cfg.Server.ListenAddr)
	return g.Wait()
}

// runJanitor periodically removes recordings older than the configured
// retention.
func (a *App) runJanitor(ctx context.Context) {
	days := a.cfg.Storage.RetentionDays
	if days <= 0 {
		days = 30
	}
	maxAge := time.Duration(days) * 24 * time.Hour

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.recordings.CleanupOlderThan(maxAge)
			if err != nil {
				slog.Warn("recording cleanup failed", "err", err)
			} else if n > 0 {
				slog.Info("removed expired recordings", "count", n)
			}
		}
	}
}

// Shutdown closes all subsystems in order. Safe to call more than once.
func (a *App) Shutdown(_ context.Context) error {
	var errs []error
	a.stopOnce.Do(func() {
		for _, c := range a.closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
