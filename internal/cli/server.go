package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"history-quiz-service/internal/app"
	"history-quiz-service/internal/config"
	"history-quiz-service/internal/infra/memory"
	"history-quiz-service/internal/infra/openrouter"
	pgloader "history-quiz-service/internal/infra/postgres"
	infraredis "history-quiz-service/internal/infra/redis"
	"history-quiz-service/internal/logger"
	transport "history-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.PoolLoader = memory.NewStaticPoolLoader(memory.DefaultPools())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}

	poolTTL := config.TTLDuration(cfg.Quiz.PoolTTL, 10*time.Minute)
	var poolSource memory.PoolSource
	if redisClient != nil {
		poolSource = infraredis.NewPoolRepository(redisClient, loader, poolTTL)
	} else {
		poolSource = memory.NewPoolRepository(loader, poolTTL)
	}

	var remote app.QuestionSupplier
	if apiKey := os.Getenv("OPENROUTER_API_KEY"); apiKey != "" && cfg.OpenRouter.URL != "" {
		timeout := config.TTLDuration(cfg.OpenRouter.Timeout, 15*time.Second)
		remote = openrouter.NewSupplier(cfg.OpenRouter.URL, apiKey, cfg.OpenRouter.Model, timeout, log)
	}
	supplier := app.NewFallbackSupplier(remote, memory.NewPoolSupplier(poolSource), log)

	var sessions app.SessionRepository
	var progress app.ProgressStore
	var leaderboard app.LeaderboardStore
	if redisClient != nil {
		sessions = infraredis.NewSessionStore(redisClient, redisTTL)
		progress = infraredis.NewProgressStore(redisClient)
		leaderboard = infraredis.NewLeaderboard(redisClient)
	} else {
		sessions = memory.NewSessionStore()
		progress = memory.NewProgressStore()
		leaderboard = memory.NewLeaderboard()
	}

	opts := app.DefaultOptions()
	if cfg.Quiz.Questions > 0 {
		opts.TotalQuestions = cfg.Quiz.Questions
	}
	opts.QuestionTime = config.TTLDuration(cfg.Quiz.QuestionTime, opts.QuestionTime)

	service := app.NewGameService(sessions, supplier, progress, leaderboard, opts, log)
	wsHandler := transport.NewWSHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting history quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
