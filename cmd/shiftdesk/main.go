package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/avdeyev/shiftdesk/internal/config"
	"github.com/avdeyev/shiftdesk/internal/infra/cache"
	"github.com/avdeyev/shiftdesk/internal/infra/database"
	"github.com/avdeyev/shiftdesk/internal/infra/repository"
	"github.com/avdeyev/shiftdesk/internal/present/rest"
	"github.com/avdeyev/shiftdesk/internal/present/rest/middleware"
	"github.com/avdeyev/shiftdesk/internal/service"
	"github.com/avdeyev/shiftdesk/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)

	var store usecase.Cache
	switch conf.Cache.Backend {
	case "memcached":
		store = cache.NewMemcachedCache(database.NewMemcached(conf.Server.MemcachedAddr))
	default:
		store = cache.NewRedisCache(rdb)
	}
	policy := usecase.CachePolicy{
		EntityTTL: conf.Cache.EntityTTL.Std(),
		ListTTL:   conf.Cache.ListTTL.Std(),
	}

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chatRepo := repository.NewChatRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(userRepo, rdb, conf.Auth.Secret, conf.Auth.TokenLifetime.Std())
	storage := service.NewStorageService(conf.Upload.Dir, conf.Upload.MaxSizeBytes)
	reaper := service.NewReaperService(db)

	users := usecase.NewUserUsecase(userRepo, auditRepo, store, policy)
	articles := usecase.NewArticleUsecase(articleRepo, auditRepo, store, policy)
	tasks := usecase.NewTaskUsecase(taskRepo, userRepo, auditRepo, store, policy)
	chats := usecase.NewChatUsecase(chatRepo, signal)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to setup trace provider", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
		e.Use(otelecho.Middleware("shiftdesk"))
	}

	authMiddleware := middleware.NewAuthMiddleware(auth)
	e.Use(authMiddleware.IdentifyActor)

	handler := rest.NewHandler(users, articles, tasks, chats, auth, storage, signal, conf.Auth.TokenLifetime.Std())
	handler.RegisterRoutes(e)

	if err := reaper.Start(); err != nil {
		slog.Error("failed to start reaper", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer reaper.Stop()

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName("shiftdesk")),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown trace provider", slog.String("error", err.Error()))
		}
	}, nil
}
