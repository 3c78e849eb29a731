package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blindpick-service/internal/app"
	"blindpick-service/internal/config"
	"blindpick-service/internal/domain"
	"blindpick-service/internal/infra/memory"
	pgloader "blindpick-service/internal/infra/postgres"
	redissession "blindpick-service/internal/infra/redis"
	"blindpick-service/internal/template"
	transport "blindpick-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the show server",
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
	}

	loader, err := buildPackLoader(cfg, pool)
	if err != nil {
		return err
	}

	packTTL := config.TTLDuration(cfg.Templates.TTL, 10*time.Minute)
	var packRepo app.PackRepository
	if redisClient != nil {
		packRepo = redissession.NewPackRepository(redisClient, loader, packTTL)
	} else {
		packRepo = memory.NewPackRepository(loader, packTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redissession.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewShowService(store, packRepo)
	if cfg.Show.DefaultVolume > 0 {
		service.SetDefaultVolume(cfg.Show.DefaultVolume)
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting blindpick service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildPackLoader picks the round pack source: Postgres when configured, else
// a template file from disk, else a built-in sample pack.
func buildPackLoader(cfg config.Config, pool *pgxpool.Pool) (memory.PackLoader, error) {
	if pool != nil {
		return pgloader.NewPackLoader(pool), nil
	}
	if cfg.Templates.Path != "" {
		rounds, err := template.LoadFile(cfg.Templates.Path)
		if err != nil {
			return nil, err
		}
		packID := cfg.Templates.Pack
		if packID == "" {
			packID = "default"
		}
		return memory.NewStaticPackLoader(map[string]domain.Pack{
			packID: {ID: packID, Rounds: rounds},
		}), nil
	}
	return memory.NewStaticPackLoader(samplePacks()), nil
}

// samplePacks provides a minimal pack so the server is playable without any
// template file or database configured.
func samplePacks() map[string]domain.Pack {
	return map[string]domain.Pack{
		"default": {
			ID: "default",
			Rounds: []domain.RoundTemplate{
				{
					Title: "Round 1",
					Video: "clips/round1.mp4",
					Truth: "The crew filmed the whole scene in one take.",
				},
			},
		},
	}
}
