package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"stemarcade/config"
	"stemarcade/handlers"
	"stemarcade/middleware"
	"stemarcade/routes"
	"stemarcade/services"
	"stemarcade/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ARCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "stemarcade",
		Short:         "Catalog and admin API for a browser game arcade.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: ARCADE_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: ARCADE_PORT)")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", "mongodb://localhost:27017", "mongodb connection string (env: ARCADE_MONGO_URI)")
	fs.StringVar(&cfg.MongoDB, "mongo-db", "stemarcade", "mongodb database name (env: ARCADE_MONGO_DB)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "redis address, empty disables redis (env: ARCADE_REDIS_ADDR)")
	fs.StringVar(&cfg.BackendURL, "backend-url", "", "default file storage backend url (env: ARCADE_BACKEND_URL)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "secret for signing admin tokens (env: ARCADE_JWT_SECRET)")
	fs.StringVar(&cfg.AdminPasswordHash, "admin-password-hash", "", "optional bcrypt hash of a static admin password (env: ARCADE_ADMIN_PASSWORD_HASH)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error (env: ARCADE_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "log format: text or json (env: ARCADE_LOG_FORMAT)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "rotating log file path, empty logs to stderr (env: ARCADE_LOG_FILE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	config.SetupLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)

	// Initialize database
	db, err := config.InitMongo(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize mongodb: %w", err)
	}

	// Initialize Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = config.InitRedis(cfg)
	} else {
		slog.Info("redis disabled, config caching and cross-instance refresh are off")
	}

	// Initialize stores
	gameStore := store.NewGames(db)
	feedbackStore := store.NewFeedback(db)
	configStore := store.NewConfig(db)

	// Initialize WebSocket hub
	hub := services.NewHub(redisClient)
	go hub.Run()
	go hub.Subscribe(ctx)

	// Initialize services
	authService := services.NewAuthService(cfg.JWTSecret, cfg.AdminPasswordHash)
	configService := services.NewConfigService(configStore, redisClient, hub, cfg.BackendURL)
	fileClient := services.NewFileClient(configService)
	gameService := services.NewGameService(gameStore, feedbackStore, fileClient, configService, hub)
	feedbackService := services.NewFeedbackService(feedbackStore, fileClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	gameHandler := handlers.NewGameHandler(gameService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	configHandler := handlers.NewConfigHandler(configService)

	// Setup Gin router
	router := gin.Default()
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, authHandler, gameHandler, feedbackHandler, configHandler, hub, cfg.JWTSecret)

	slog.Info("server starting", "addr", cfg.Addr())
	return router.Run(cfg.Addr())
}

func main() {
	cfg := &config.Config{}
	if err := newCmd(cfg).Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
