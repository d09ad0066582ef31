package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"jobby-api/internal/auth"
	"jobby-api/internal/config"
	apphttp "jobby-api/internal/http"
	"jobby-api/internal/repository"
	"jobby-api/internal/repository/mongodb"
	"jobby-api/internal/repository/sqlite"
	"jobby-api/internal/service"
	"jobby-api/internal/storage"
)

type repositories struct {
	users    repository.UserRepository
	jobs     repository.JobRepository
	feedback repository.FeedbackRepository
	close    func(ctx context.Context) error
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			logger.Warnf("close database: %v", err)
		}
	}()

	if err := repos.users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := repos.jobs.Init(ctx); err != nil {
		logger.Fatalf("init job repository: %v", err)
	}
	if err := repos.feedback.Init(ctx); err != nil {
		logger.Fatalf("init feedback repository: %v", err)
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := service.NewUserService(repos.users, issuer)
	jobService := service.NewJobService(repos.jobs)
	feedbackService := service.NewFeedbackService(repos.feedback)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.Config{
		Users:              userService,
		Jobs:               jobService,
		Feedback:           feedbackService,
		Tokens:             issuer,
		Storage:            storageSvc,
		Bucket:             cfg.Storage.Bucket,
		KeyPrefix:          cfg.Storage.KeyPrefix,
		Region:             cfg.Storage.Region,
		PublicBaseURL:      cfg.Storage.PublicBaseURL,
		MaxLogoBytes:       cfg.Storage.MaxLogoBytes,
		MaxJobPayloadBytes: cfg.Server.MaxJobPayloadBytes,
		FeedbackLocation:   cfg.FeedbackLocation(),
		AllowOrigins:       cfg.CORS.AllowOrigins,
		Logger:             logger,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s (database driver %s)", cfg.Server.Addr, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func openRepositories(ctx context.Context, cfg config.Config) (*repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		db, err := mongodb.Open(ctx, cfg.Database.URI, cfg.Database.Name, cfg.Database.Timeout)
		if err != nil {
			return nil, err
		}
		return &repositories{
			users:    mongodb.NewUserRepository(db),
			jobs:     mongodb.NewJobRepository(db),
			feedback: mongodb.NewFeedbackRepository(db),
			close: func(ctx context.Context) error {
				return mongodb.Close(ctx, db)
			},
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return &repositories{
			users:    sqlite.NewUserRepository(db),
			jobs:     sqlite.NewJobRepository(db),
			feedback: sqlite.NewFeedbackRepository(db),
			close: func(context.Context) error {
				return db.Close()
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// buildStorage returns nil when no bucket is configured; logo uploads are then disabled.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("no storage bucket configured, logo uploads disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
