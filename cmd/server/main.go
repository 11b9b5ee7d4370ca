package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/auth"
	"github.com/anonto42/recipe-share/backend/internal/mealdb"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/internal/router"
	"github.com/anonto42/recipe-share/backend/internal/storage"
	"github.com/anonto42/recipe-share/backend/internal/tabs"
	"github.com/anonto42/recipe-share/backend/pkg/config"
	"github.com/anonto42/recipe-share/backend/pkg/firebase"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recipe-share",
		Short: "Recipe sharing web application",
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)
	return cfg
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			defer db.CloseDB()

			if err := repositories.AutoMigrate(db.SQL, cfg.PostStore != "mongo"); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			logger.Log.Info("Migrations completed.")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	postsInSQL := cfg.PostStore != "mongo"
	if err := repositories.AutoMigrate(db.SQL, postsInSQL); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	userRepo := repositories.NewPostgresUserRepository(db.SQL)
	likeRepo := repositories.NewPostgresLikeRepository(db.SQL)
	var postRepo repositories.PostRepository = repositories.NewPostgresPostRepository(db.SQL)
	if !postsInSQL {
		postRepo = repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase), userRepo, likeRepo)
	}

	var fbApp *firebase.App
	if cfg.FirebaseCredentialsPath != "" || cfg.StorageBackend == "firebase" {
		fbApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			return fmt.Errorf("initialize firebase: %w", err)
		}
	}

	store, mediaDir, err := openStore(cfg, fbApp)
	if err != nil {
		return err
	}

	var authOpts []auth.Option
	if fbApp != nil {
		authOpts = append(authOpts, auth.WithIDTokenVerifier(fbApp.AuthClient))
	}
	authService := auth.NewService(
		repositories.NewPostgresCredentialRepository(db.SQL),
		cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
		authOpts...,
	)
	if cfg.AdminID == "" {
		logger.Log.Warn("ADMIN_ID is not set; the admin panel is unreachable")
	}

	registry, err := tabs.NewRegistry(cfg.TabCacheSize, authService, cfg.AdminID)
	if err != nil {
		return err
	}
	defer registry.Purge()

	e := echo.New()
	e.HideBanner = true
	err = router.SetupRoutes(e, router.Deps{
		Users:           userRepo,
		Posts:           postRepo,
		Likes:           likeRepo,
		Tabs:            registry,
		Store:           store,
		Meals:           mealdb.NewClient(cfg.MealDBBaseURL, nil),
		MediaDir:        mediaDir,
		FirebaseEnabled: fbApp != nil,
		SecureCookies:   cfg.IsProduction(),
	})
	if err != nil {
		return fmt.Errorf("setup routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore picks the object storage backend. mediaDir is set only for the
// local backend, whose files the server serves itself.
func openStore(cfg *config.Config, fbApp *firebase.App) (storage.Store, string, error) {
	switch cfg.StorageBackend {
	case "local":
		if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
			return nil, "", fmt.Errorf("create media dir: %w", err)
		}
		store := storage.NewLocalStore(cfg.MediaDir, cfg.PublicBaseURL)
		return store, store.Dir(), nil
	case "firebase":
		if cfg.FirebaseStorageBucket == "" {
			return nil, "", fmt.Errorf("FIREBASE_STORAGE_BUCKET environment variable not set")
		}
		bucket, err := fbApp.StorageClient.DefaultBucket()
		if err != nil {
			return nil, "", fmt.Errorf("open firebase bucket: %w", err)
		}
		return storage.NewGCSStore(bucket, cfg.FirebaseStorageBucket), "", nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, "", fmt.Errorf("S3_BUCKET environment variable not set")
		}
		store, err := storage.NewS3Store(cfg.S3Region, cfg.S3Bucket, cfg.S3PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		return nil, "", fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}
