package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/auth"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/collection"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/eventbroker/nats"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/media"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/v1/gallery"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/web"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/repository/postgres"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/storage/minio"
	"github.com/Bolt667/TallyAndSimon/internal/config"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/gate"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/page"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	content, err := loadContent(cfg.Site)
	if err != nil {
		logger.Error("failed to load site content", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	proxyBase := strings.TrimRight(cfg.Server.PublicURL, "/") + media.Prefix
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, cfg.Bucket(), proxyBase, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}

	//change feed
	feed, err := nats.NewFeed(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init NATS feed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := feed.Close(); err != nil {
			logger.Error("failed to close NATS feed", "error", err)
		}
	}()

	//repositories
	unitOfWork := postgres.NewUnitOfWork(db)
	photos := collection.NewLive(postgres.NewSQLPhotoRepository(db), feed, cfg.App.AppID, logger)

	authService := auth.NewService(unitOfWork, logger)

	pages := page.NewRegistry(ctx, page.Deps{
		Auth:             authService,
		Collection:       photos,
		Storage:          minioAdapter,
		Gate:             gate.New(cfg.Gate.Password),
		GateMode:         cfg.Gate.Mode,
		Upload:           cfg.Upload,
		InitialAuthToken: cfg.App.InitialAuthToken,
		Logger:           logger,
	})
	defer pages.Close()

	//http
	site, err := web.NewHandler(content, cfg.Upload.MaxSize, logger)
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}
	galleryHandler := gallery.NewGalleryHandlerV1(cfg.Upload.MaxSize, logger)
	photoHandler := media.NewHandler(minioAdapter, logger)

	router := chi.NewRouter(logger, pages, site, galleryHandler, photoHandler, chi.RouterConfig{
		Env:           cfg.Env.Env,
		CookieName:    cfg.Page.CookieName,
		MaxUploadSize: cfg.Upload.MaxSize,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"app_id", cfg.App.AppID,
			"gate_mode", cfg.Gate.Mode,
		)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init sweep task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initSweepTask(ctx, pages, cfg.Page, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")
}

func loadContent(cfg config.SiteConfig) (web.Content, error) {
	if cfg.ContentFile == "" {
		return web.DefaultContent(), nil
	}
	data, err := os.ReadFile(cfg.ContentFile)
	if err != nil {
		return web.Content{}, fmt.Errorf("failed to read %s: %w", cfg.ContentFile, err)
	}
	return web.ParseContent(data)
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

func initSweepTask(ctx context.Context, sweeper port.PageSweeper, cfg config.PageConfig, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.SweepEvery)
	defer ticker.Stop()

	logger.Info("page sweep task initialized", "interval", cfg.SweepEvery, "idle_ttl", cfg.IdleTTL)

	for {
		select {
		case <-ticker.C:
			sweeper.Sweep(ctx, time.Now().Add(-cfg.IdleTTL))
		case <-ctx.Done():
			logger.Info("page sweep task stopped")
			return
		}
	}
}
