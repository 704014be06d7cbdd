package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"maze-quiz-system/config"
	"maze-quiz-system/handlers"
	"maze-quiz-system/middleware"
	"maze-quiz-system/services"
	"maze-quiz-system/utils"
	"maze-quiz-system/workers"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	utils.SetupLogger(cfg.LogLevel)

	levels, err := config.LoadLevelCatalog(cfg.LevelsFile)
	if err != nil {
		return err
	}

	db, err := openAndMigrate(cfg)
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progressionService := services.NewProgressionService(db, levels)
	recorder := services.NewResultRecorder(db, levels)
	profileService := services.NewProfileService(db, progressionService)
	questionService := services.NewQuestionService(db)
	catalogService := services.NewCatalogService(db)

	// --- Catalog: seed the embedded defaults, then follow R2 if configured ---
	if _, err := catalogService.SeedYAML(ctx, config.DefaultCatalogYAML()); err != nil {
		return err
	}
	if cfg.R2Enabled() {
		client, err := utils.NewR2Client(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret)
		if err != nil {
			return err
		}
		src := &utils.R2CatalogSource{Client: client, Bucket: cfg.R2Bucket, Key: cfg.CatalogObjectKey}
		sched, err := catalogService.StartCatalogSync(ctx, src, cfg.CatalogSyncInterval)
		if err != nil {
			return err
		}
		defer func() { _ = sched.Shutdown() }()
	}

	if cfg.SyncServiceURL != "" {
		workers.NewPlayerSyncWorker(db, cfg.SyncServiceURL, "/api/v1/public/profiles", cfg.GameServiceToken).Start(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      "maze-quiz",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Health and metrics are scraped inside the cluster, ahead of gateway auth.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-Active-Level",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID, X-Active-Level",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// 🔐❗ GLOBAL: Only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware(cfg.GameServiceToken))

	handlers.SetupLevelRoutes(app, levels, questionService)
	handlers.SetupProgressionRoutes(app, recorder, progressionService, profileService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.Info("✅ Server running", "addr", "http://localhost:"+cfg.Port, "origins", cfg.AllowedOrigins)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}
