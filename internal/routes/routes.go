package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workorder-system/internal/listeners"
	"workorder-system/internal/repositories"
	"workorder-system/pkg/config"
	"workorder-system/pkg/eventbus"
	"workorder-system/pkg/metrics"
	"workorder-system/pkg/middleware"
	"workorder-system/pkg/service"
)

type Loggers struct {
	Main   *zap.Logger
	Origin *zap.Logger
	HTTP   *zap.Logger
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	m *metrics.Metrics,
	validate *validator.Validate,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.HTTP)
	secureGroup := api.Group("", authMW.Auth)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 1. СЛУШАТЕЛИ ---
	listeners.NewRejectionListener(cacheRepo, m, loggers.Origin).Register(bus)

	// --- 2. МАРШРУТЫ ---
	RunOriginRouter(secureGroup, dbConn, cacheRepo, bus, m, validate, cfg.Origin, loggers)

	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
}
