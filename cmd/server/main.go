package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/api/handlers"
	"github.com/maheshrc27/autopost/internal/api/middleware"
	"github.com/maheshrc27/autopost/internal/database"
	job "github.com/maheshrc27/autopost/internal/jobs"
	applog "github.com/maheshrc27/autopost/internal/logger"
	"github.com/maheshrc27/autopost/internal/metrics"
	"github.com/maheshrc27/autopost/internal/queue"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	applog.SetupDefault(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(cfg.PostgresURI); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(context.Background(), cfg.PostgresURI)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(reg)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	postingHistoryRepo := repository.NewPostingHistoryRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	// Scheduled publishing needs Redis; without it posts only record their time.
	var (
		client     *asynq.Client
		dispatcher service.PublishDispatcher
	)
	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	if cfg.RedisURI != "" {
		client = asynq.NewClient(redisConn)
		dispatcher = queue.NewDispatcher(client)
	}

	openAIService := service.NewOpenAIService(cfg.OpenAI, cfg.HTTPTimeout, recorder)
	linkedInService := service.NewLinkedInService(cfg.LinkedIn, cfg.HTTPTimeout, recorder)
	platformService := service.NewPlatformService(*cfg, socialAccountRepo, linkedInService, recorder)
	postService := service.NewPostService(postRepo, postingHistoryRepo, openAIService, linkedInService, platformService, dispatcher, recorder)
	authService := service.NewAuthService(*cfg, userRepo, socialAccountRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error(err.Error(), "path", c.Path())
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.PrometheusMiddleware(recorder))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))

	health := handlers.NewHealthHandler(version)
	app.Get("/api/health", health.Health)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(authService)
	app.Post("/api/auth/register", auth.Register)
	app.Post("/api/auth/login", auth.Login)

	platform := handlers.NewPlatformHandler(platformService, *cfg)
	app.Get("/api/auth/linkedin/callback", platform.LinkedInCallback)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/auth/profile", auth.Profile)
	api.Get("/auth/linkedin/auth", platform.LinkedInAuth)
	api.Delete("/auth/linkedin/disconnect", platform.LinkedInDisconnect)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_keys", apiKeys.CreateApiKey)
	api.Get("/api_keys", apiKeys.ListKeys)
	api.Delete("/api_keys/:id", apiKeys.RemoveAPIKey)

	post := handlers.NewPostHandler(postService)
	api.Post("/posts/generate", post.Generate)
	api.Post("/posts/hashtags", post.GenerateHashtags)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)
	api.Post("/posts/:id/publish", post.PublishPost)
	api.Get("/posts/:id/analytics", post.Analytics)
	api.Get("/posts/:id/attempts", post.Attempts)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(platformService)

	c := cron.New()
	if err := c.AddFunc(cfg.TokenRefreshInterval, refreshTokenJob.RefreshTokens); err != nil {
		slog.Error("invalid token refresh interval", "error", err)
		os.Exit(1)
	}
	c.Start()

	//queue
	var server *asynq.Server
	if client != nil {
		server = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: cfg.QueueConcurrency,
		})

		queueW := queue.NewQueue(postService)
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishScheduled, queueW.HandlePublishScheduledTask)

		go func() {
			slog.Info("Starting the Asynq server...")
			if err := server.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("Server is running", "port", cfg.Port)

	gracefulShutdown(app, db, c, server, client)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, c *cron.Cron, server *asynq.Server, client *asynq.Client) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	c.Stop()

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		slog.Error("Failed to shut down server", "error", err)
	}

	if server != nil {
		server.Shutdown()
	}
	if client != nil {
		client.Close()
	}

	closeDB(db)
	slog.Info("Server shutdown complete.")
}
