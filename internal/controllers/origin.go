package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workorder-system/internal/dto"
	"workorder-system/internal/origin"
	"workorder-system/internal/services"
	apperrors "workorder-system/pkg/errors"
	"workorder-system/pkg/utils"
)

type OriginController struct {
	originService services.OriginServiceInterface
	logger        *zap.Logger
}

func NewOriginController(originService services.OriginServiceInterface, logger *zap.Logger) *OriginController {
	return &OriginController{
		originService: originService,
		logger:        logger,
	}
}

func (c *OriginController) GetPlants(ctx echo.Context) error {
	plants, err := c.originService.ListPlants(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, plants, "Successfully", http.StatusOK)
}

func (c *OriginController) GetUnits(ctx echo.Context) error {
	plantID := ctx.Param("id")
	if plantID == "" {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Не указана площадка", apperrors.ErrBadRequest, nil), c.logger)
	}
	units, err := c.originService.ListUnits(ctx.Request().Context(), plantID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, units, "Successfully", http.StatusOK)
}

func (c *OriginController) GetAnomalies(ctx echo.Context) error {
	var q dto.AnomalyQueryDTO
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверные параметры запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&q); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	anomalies, err := c.originService.ListOpenAnomalies(ctx.Request().Context(), q.PlantID, q.UnitID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, anomalies, "Successfully", http.StatusOK)
}

func (c *OriginController) GetPlans(ctx echo.Context) error {
	var q dto.PlanQueryDTO
	if err := ctx.Bind(&q); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверные параметры запроса", err, nil), c.logger)
	}

	plans, err := c.originService.ListActivePlans(ctx.Request().Context(), q.PlantID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, plans, "Successfully", http.StatusOK)
}

// ExpandPlanTasks - явное развёртывание плана. ?format=xlsx отдаёт файл.
func (c *OriginController) ExpandPlanTasks(ctx echo.Context) error {
	format := strings.ToLower(ctx.QueryParam("format"))
	if format != "" && format != "json" && format != "xlsx" {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("Неизвестный формат выгрузки: %s", format), c.logger)
	}

	var req dto.ExpandPlanTasksDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	planID := ctx.Param("id")
	tasks, err := c.originService.ExpandPlanTasks(ctx.Request().Context(), req.PlantID, planID, req.EquipmentIDs)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if format == "xlsx" {
		return c.respondWithXLSX(ctx, planID, tasks)
	}
	return utils.SuccessResponse(ctx, dto.GeneratedTasksDTO{PlanID: planID, Tasks: tasks}, "Successfully", http.StatusOK)
}

func (c *OriginController) respondWithXLSX(ctx echo.Context, planID string, tasks []origin.GeneratedTask) error {
	f, err := services.TasksWorkbook(planID, tasks)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("plan_%s_tasks_%s.xlsx", planID, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func (c *OriginController) ApplyAction(ctx echo.Context) error {
	var req dto.SelectionActionDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx := ctx.Request().Context()
	if _, ok := origin.SessionFromContext(reqCtx); !ok && req.SessionID.Valid {
		reqCtx = origin.WithSession(reqCtx, req.SessionID.String)
	}

	res, err := c.originService.Apply(reqCtx, req.Selection, req.Action.ToOrigin())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.NewSelectionResultDTO(res), "Successfully", http.StatusOK)
}

func (c *OriginController) ResolveSelection(ctx echo.Context) error {
	var req dto.ResolveSelectionDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}

	reqCtx := ctx.Request().Context()
	out, err := c.originService.Resolve(reqCtx, req.Selection)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	userID, _ := utils.GetUserIDFromCtx(reqCtx)
	c.logger.Info("Происхождение наряда определено",
		zap.Int("user_id", userID),
		zap.String("type", string(out.Type)),
		zap.Int("tasks", len(out.Tasks)),
	)
	return utils.SuccessResponse(ctx, out, "Successfully", http.StatusOK)
}

// GetLoading - какие загрузчики сейчас выполняются.
func (c *OriginController) GetLoading(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, c.originService.Loading(), "Successfully", http.StatusOK)
}
