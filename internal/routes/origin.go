package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"workorder-system/internal/controllers"
	"workorder-system/internal/events"
	"workorder-system/internal/repositories"
	"workorder-system/internal/services"
	"workorder-system/pkg/config"
	"workorder-system/pkg/eventbus"
	"workorder-system/pkg/metrics"
	"workorder-system/pkg/middleware"
)

func RunOriginRouter(
	secureGroup *echo.Group,
	dbConn *pgxpool.Pool,
	cacheRepo repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	m *metrics.Metrics,
	validate *validator.Validate,
	cfg config.OriginConfig,
	loggers *Loggers,
) {
	originService := services.NewOriginService(services.OriginDeps{
		Plants:    repositories.NewPlantRepository(dbConn, loggers.Origin),
		Anomalies: repositories.NewAnomalyRepository(dbConn, loggers.Origin),
		Plans:     repositories.NewMaintenancePlanRepository(dbConn, loggers.Origin),
		Sequence:  repositories.NewRedisSequenceStore(cacheRepo, cfg.SequenceTTL),
		Observer:  m,
		Sink:      events.NewBusSink(bus),
		Validate:  validate,
	}, cfg, loggers.Origin)

	originCtrl := controllers.NewOriginController(originService, loggers.Origin)
	RegisterOriginRoutes(secureGroup, originCtrl, loggers)
}

// RegisterOriginRoutes вешает маршруты выбора происхождения наряда на группу.
func RegisterOriginRoutes(group *echo.Group, originCtrl *controllers.OriginController, loggers *Loggers) {
	originGroup := group.Group("/origin", middleware.FormSession(loggers.HTTP))

	originGroup.GET("/plants", originCtrl.GetPlants)
	originGroup.GET("/plants/:id/units", originCtrl.GetUnits)
	originGroup.GET("/anomalies", originCtrl.GetAnomalies)
	originGroup.GET("/plans", originCtrl.GetPlans)
	originGroup.POST("/plans/:id/tasks", originCtrl.ExpandPlanTasks)
	originGroup.GET("/loading", originCtrl.GetLoading)

	originGroup.POST("/selection/actions", originCtrl.ApplyAction)
	originGroup.POST("/selection/resolve", originCtrl.ResolveSelection)
}
