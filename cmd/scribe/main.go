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
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/okleinman/scribe/internal/auth"
	"github.com/okleinman/scribe/internal/blog"
	"github.com/okleinman/scribe/internal/config"
	"github.com/okleinman/scribe/internal/events"
	"github.com/okleinman/scribe/internal/markdown"
	"github.com/okleinman/scribe/internal/storage"
	"github.com/okleinman/scribe/internal/web"
)

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to YAML config file",
		Sources: cli.EnvVars("SCRIBE_CONFIG"),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "scribe",
		Usage:  "A personal blog engine",
		Flags:  []cli.Flag{configFlag()},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the blog server",
				Flags:  []cli.Flag{configFlag()},
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Create the database schema",
				Flags:  []cli.Flag{configFlag()},
				Action: runMigrate,
			},
			{
				Name:  "createuser",
				Usage: "Create an author account",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: runCreateUser,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	repo      blog.Repository
	authStore auth.Store
}

func setup(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.Level()}))
	slog.SetDefault(logger)

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, db: db}
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		a.repo = blog.NewPostgresRepository(db)
		a.authStore = auth.NewPostgresStore(db)
	case config.DriverSQLite:
		a.repo = blog.NewSQLiteRepository(db)
		a.authStore = auth.NewSQLiteStore(db)
	}
	return a, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if a.cfg.RabbitMQ.URL != "" {
		rp, err := events.NewRabbitMQPublisher(a.cfg.RabbitMQ.URL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer rp.Close()
		publisher = rp
	}

	var (
		store  storage.Storage
		images *blog.ImageProcessor
	)
	if a.cfg.S3.Enabled() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(a.cfg.S3.Region))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if a.cfg.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(a.cfg.S3.Endpoint)
				o.UsePathStyle = true
			}
		})
		store = storage.NewS3Storage(client, a.cfg.S3.Bucket)
		images = blog.NewImageProcessor(store, a.cfg.S3.Bucket, a.cfg.S3.Region, a.cfg.S3.CDNBaseURL, a.logger)
	}

	postsSvc := blog.NewService(a.repo, markdown.NewRenderer(), publisher, images, a.logger)
	authSvc := auth.NewService(a.authStore, time.Duration(a.cfg.Auth.SessionTTL))

	tmpl, err := web.NewTemplates()
	if err != nil {
		return err
	}
	handlers := web.NewHandlers(postsSvc, authSvc, a.cfg.Site, tmpl, a.logger)
	health := web.Health(&web.HealthDeps{
		DB:          a.db,
		Storage:     store,
		RabbitMQURL: a.cfg.RabbitMQ.URL,
	})
	router := web.NewRouter(handlers, authSvc, health, a.logger)

	server := &http.Server{
		Addr:         a.cfg.App.Address(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type migrator interface {
	Migrate(ctx context.Context) error
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()

	for _, m := range []any{a.repo, a.authStore} {
		mig, ok := m.(migrator)
		if !ok {
			return fmt.Errorf("storage backend %T cannot migrate", m)
		}
		if err := mig.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	a.logger.Info("schema up to date", "driver", a.cfg.Database.Driver)
	return nil
}

func runCreateUser(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()

	svc := auth.NewService(a.authStore, time.Duration(a.cfg.Auth.SessionTTL))
	user, err := svc.Register(ctx, cmd.String("username"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	a.logger.Info("user created", "id", user.ID, "username", user.Username)
	return nil
}
