package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tannibunni/dramaword-backend/internal/adapter/cache"
	"github.com/tannibunni/dramaword-backend/internal/adapter/postgres"
	milestonerepo "github.com/tannibunni/dramaword-backend/internal/adapter/postgres/milestone"
	"github.com/tannibunni/dramaword-backend/internal/adapter/postgres/schedule"
	"github.com/tannibunni/dramaword-backend/internal/adapter/postgres/session"
	"github.com/tannibunni/dramaword-backend/internal/adapter/postgres/word"
	"github.com/tannibunni/dramaword-backend/internal/adapter/provider/bilingual"
	"github.com/tannibunni/dramaword-backend/internal/adapter/provider/freedict"
	"github.com/tannibunni/dramaword-backend/internal/adapter/provider/llm"
	"github.com/tannibunni/dramaword-backend/internal/config"
	"github.com/tannibunni/dramaword-backend/internal/service/lookup"
	"github.com/tannibunni/dramaword-backend/internal/service/milestone"
	"github.com/tannibunni/dramaword-backend/internal/service/review"
	"github.com/tannibunni/dramaword-backend/internal/transport/middleware"
	"github.com/tannibunni/dramaword-backend/internal/transport/rest"
	"github.com/tannibunni/dramaword-backend/migrations"
)

// cacheSweepInterval is how often expired cache entries are dropped
// eagerly. Reads already ignore them.
const cacheSweepInterval = time.Hour

// Run loads configuration, wires every component and serves HTTP until ctx
// is cancelled, then shuts the server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("bilingual_enabled", cfg.BilingualEnabled()),
		slog.Bool("llm_enabled", cfg.LLMEnabled()),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, migrations.FS, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	wordCache, err := cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries, logger)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer rateLimiter.Stop()

	handler := newHandler(cfg, logger, pool, wordCache, rateLimiter)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go sweepCache(ctx, wordCache, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newHandler builds repositories, sources, services and the HTTP router.
func newHandler(
	cfg *config.Config,
	logger *slog.Logger,
	pool *pgxpool.Pool,
	wordCache *cache.WordCache,
	rateLimiter *middleware.RateLimiter,
) http.Handler {
	// Repositories
	txManager := postgres.NewTxManager(pool)
	words := word.New(pool)
	schedules := schedule.New(pool)
	sessions := session.New(pool)
	milestones := milestonerepo.New(pool)

	// Sources
	bilingualSrc := bilingual.NewProvider(bilingual.Config{
		BaseURL:   cfg.Bilingual.BaseURL,
		AppKey:    cfg.Bilingual.AppKey,
		AppSecret: cfg.Bilingual.AppSecret,
		From:      cfg.Bilingual.From,
		To:        cfg.Bilingual.To,
	}, logger)
	openDictSrc := freedict.NewProvider(cfg.FreeDict.BaseURL, logger)
	completionSrc := llm.NewProvider(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		MaxTokens:      cfg.LLM.MaxTokens,
		TargetLanguage: cfg.LLM.TargetLanguage,
	}, logger)

	// Services
	lookupSvc := lookup.NewService(logger, words, wordCache, bilingualSrc, openDictSrc, completionSrc, lookup.Config{
		AdapterTimeout:    cfg.Lookup.AdapterTimeout,
		CompletionTimeout: cfg.Lookup.CompletionTimeout,
		StoreTimeout:      cfg.Lookup.StoreTimeout,
		Coalesce:          cfg.Lookup.Coalesce,
	})
	reviewSvc := review.NewService(logger, txManager, schedules, sessions, review.Config{
		Location:             cfg.Review.Location,
		DailyLimit:           cfg.Review.DailyLimit,
		SessionRetentionDays: cfg.Review.SessionRetentionDays,
	})
	milestoneSvc := milestone.NewService(logger, lookupSvc, milestones)

	// Transport
	handlers := rest.Handlers{
		Words:      rest.NewWordHandler(lookupSvc, logger),
		Reviews:    rest.NewReviewHandler(reviewSvc, logger),
		Milestones: rest.NewMilestoneHandler(milestoneSvc, logger),
		Health:     rest.NewHealthHandler(pool, wordCache, BuildVersion()),
	}

	common := middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)

	return rest.NewRouter(handlers, rateLimiter.Limit(cfg.RateLimit.LookupPerMinute), common)
}

func sweepCache(ctx context.Context, c *cache.WordCache, logger *slog.Logger) {
	ticker := time.NewTicker(cacheSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.InvalidateExpired(); n > 0 {
				logger.Debug("expired cache entries removed", slog.Int("count", n))
			}
		}
	}
}
