package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/forcize/hylo-node/internal/config"
	"github.com/forcize/hylo-node/internal/infra/database"
	"github.com/forcize/hylo-node/internal/infra/repository"
	"github.com/forcize/hylo-node/internal/present/rest"
	"github.com/forcize/hylo-node/internal/present/rest/middleware"
	"github.com/forcize/hylo-node/internal/service"
	"github.com/forcize/hylo-node/internal/usecase"
)

func main() {
	configPath := flag.String("c", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("Failed to setup tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("Failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := database.MigratePostgres(db); err != nil {
		slog.Error("Failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	var cache usecase.MembershipCache
	switch conf.Server.CacheBackend {
	case "redis":
		cache = service.NewRedisMembershipCache(rdb)
	case "memcached":
		cache = service.NewMemcachedMembershipCache(database.NewMemcached(conf.Server.MemcachedAddr))
	default:
		cache = service.NewLocalMembershipCache()
	}

	groupRepo := repository.NewGroupRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)

	signal := service.NewSignalService(rdb)

	groupUsecase := usecase.NewGroupUsecase(groupRepo)
	membershipUsecase := usecase.NewMembershipUsecase(groupRepo, membershipRepo, cache, signal)
	postUsecase := usecase.NewPostUsecase(postRepo, groupRepo, followRepo, cache)
	userUsecase := usecase.NewUserUsecase(userRepo, blockRepo, connectionRepo, followRepo)
	visibilityUsecase := usecase.NewVisibilityUsecase(userRepo, postRepo, commentRepo, membershipRepo)

	handler := rest.NewHandler(groupUsecase, membershipUsecase, postUsecase, userUsecase, visibilityUsecase, signal)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(conf.NodeInfo.FQDN))
	}
	e.Use(middleware.NewViewerMiddleware().IdentifyViewer)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Bind))
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "hylo-node"),
		)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown trace provider", slog.String("error", err.Error()))
		}
	}, nil
}
