package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/pkg/errors"
	"github.com/spot-resolver/internal/pkg/utils"
	"github.com/spot-resolver/internal/usecase"
	"github.com/spot-resolver/internal/usecase/dto"
)

// SavedHandler - сохранённые точки: клик по маркеру и список пользователя
type SavedHandler struct {
	datasets usecase.DatasetLoader
	savedUC  *usecase.SavedUseCase
	logger   *zap.Logger
}

// NewSavedHandler создает новый экземпляр SavedHandler
func NewSavedHandler(datasets usecase.DatasetLoader, savedUC *usecase.SavedUseCase, logger *zap.Logger) *SavedHandler {
	return &SavedHandler{
		datasets: datasets,
		savedUC:  savedUC,
		logger:   logger,
	}
}

// Click godoc
// @Summary Saved marker click
// @Description Одна запись - детали (живые, если есть в датасете), несколько - список слотов
// @Tags Saved
// @Accept json
// @Produce json
// @Param request body dto.SavedClickRequest true "Точка и сохранённые записи"
// @Success 200 {object} utils.SuccessResponse{data=domain.Resolution}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/saved/click [post]
func (h *SavedHandler) Click(c *fiber.Ctx) error {
	ctx := c.Context()

	var req dto.SavedClickRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	level, _ := domain.ParseSurferLevel(req.Level)

	// без датасета показываем снимок
	var live *domain.SpotRecord
	if snap, err := h.datasets.Load(ctx, req.Context()); err != nil {
		h.logger.Warn("Dataset unavailable, showing snapshot",
			zap.String("dataset", req.Context().Key()),
			zap.Error(err),
		)
	} else {
		live = snap.Index.ByLocationID(req.LocationID)
	}

	entries := usecase.GroupByLocation(req.Entries)[req.LocationID]
	res := usecase.ResolveSavedClick(req.LocationID, entries, live, level)

	return utils.SendSuccess(c, res, &utils.Meta{Total: len(entries)})
}

// List godoc
// @Summary List saved entries
// @Tags Saved
// @Produce json
// @Param user_id path string true "ID пользователя"
// @Success 200 {object} utils.SuccessResponse{data=dto.SavedListResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/users/{user_id}/saved [get]
func (h *SavedHandler) List(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Params("user_id")

	entries, err := h.savedUC.List(ctx, userID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.SavedListResponse{
		Entries: entries,
		Counts:  usecase.CountByLocation(entries),
	}, &utils.Meta{Total: len(entries)})
}

// Save godoc
// @Summary Save a forecast snapshot
// @Tags Saved
// @Accept json
// @Produce json
// @Param user_id path string true "ID пользователя"
// @Param request body dto.SaveEntryRequest true "Точка, контекст датасета и уровень"
// @Success 201 {object} utils.SuccessResponse{data=domain.SavedEntry}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/users/{user_id}/saved [post]
func (h *SavedHandler) Save(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Params("user_id")

	var req dto.SaveEntryRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	level, _ := domain.ParseSurferLevel(req.Level)

	entry, err := h.savedUC.Save(ctx, userID, req.Context(), req.LocationID, level, req.Address)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusCreated)
	return utils.SendSuccess(c, entry, nil)
}

// Delete godoc
// @Summary Delete a saved slot
// @Tags Saved
// @Produce json
// @Param user_id path string true "ID пользователя"
// @Param location_id query string true "LocationID"
// @Param surf_timestamp query string true "Время слота"
// @Success 204
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/users/{user_id}/saved [delete]
func (h *SavedHandler) Delete(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Params("user_id")

	id := domain.LocationID(c.Query("location_id"))
	ts := c.Query("surf_timestamp")
	if id == "" || ts == "" {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"required": []string{"location_id", "surf_timestamp"},
		}))
	}

	key := domain.NewSaveKey(id, ts)
	if err := h.savedUC.Delete(ctx, userID, key); err != nil {
		return utils.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
