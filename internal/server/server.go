package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/doculens/backend/internal/queue"
	mid "github.com/doculens/backend/internal/server/middleware"
	"github.com/doculens/backend/internal/storage"
	"github.com/doculens/backend/internal/util"
	"github.com/doculens/backend/pkg/analysis"
	badgercache "github.com/doculens/backend/pkg/cache/badger"
	"github.com/doculens/backend/pkg/logger"
	"github.com/doculens/backend/pkg/nlp/modelsvc"
	"github.com/doculens/backend/pkg/nlp/ruleclass"
	pgstore "github.com/doculens/backend/pkg/store/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	// Badger holds an exclusive lock on its directory, so the server and the
	// worker each get their own path. Reads warm each cache from the store.
	docCache, err := badgercache.Open(badgercache.Params{
		Path: util.GetEnvString("CACHE_DIR", "/tmp/doculens-cache/server"),
	})
	if err != nil {
		logger.Fatal("Failed to open cache", "err", err)
	}
	defer docCache.Close()

	docStore := pgstore.New(conn)
	modelClient := modelsvc.NewClient(modelsvc.Params{
		BaseURL: util.GetEnv("MODEL_SERVICE_URL"),
		APIKey:  util.GetEnv("MODEL_SERVICE_KEY"),
	})
	engine := analysis.NewEngine(analysis.Params{
		Store:      docStore,
		Cache:      docCache,
		Entities:   modelClient,
		Sentiment:  modelClient,
		Classifier: ruleclass.New(),
	})

	app := &mid.App{
		DBConn: conn,
		Queue:  ch,
		S3:     s3,
		Cache:  docCache,
		Store:  docStore,
		Engine: engine,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(mid.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("50M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func runMigrations() {
	migrationsPath := util.GetEnvString("MIGRATIONS_PATH", "file://migrations")
	m, err := migrate.New(migrationsPath, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to init migrations", "err", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}
