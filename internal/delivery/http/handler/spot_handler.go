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

// SpotHandler - выбор спота по клику и поиск ближайшего
type SpotHandler struct {
	datasets usecase.DatasetLoader
	resolver *usecase.SelectionResolver
	logger   *zap.Logger
}

// NewSpotHandler создает новый экземпляр SpotHandler
func NewSpotHandler(datasets usecase.DatasetLoader, resolver *usecase.SelectionResolver, logger *zap.Logger) *SpotHandler {
	return &SpotHandler{
		datasets: datasets,
		resolver: resolver,
		logger:   logger,
	}
}

// Resolve godoc
// @Summary Resolve a map click
// @Description Точное совпадение LocationID, иначе лучший по score спот в радиусе, иначе уведомление
// @Tags Spots
// @Accept json
// @Produce json
// @Param request body dto.ResolveRequest true "Точка клика и контекст датасета"
// @Success 200 {object} utils.SuccessResponse{data=dto.ResolveResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/resolve [post]
func (h *SpotHandler) Resolve(c *fiber.Ctx) error {
	ctx := c.Context()

	var req dto.ResolveRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	point := domain.GeoPoint{Lat: req.Lat, Lng: req.Lng}
	if !point.Valid() {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}
	level, _ := domain.ParseSurferLevel(req.Level)

	h.logger.Debug("Handling resolve request",
		zap.Float64("lat", point.Lat),
		zap.Float64("lng", point.Lng),
		zap.String("dataset", req.Context().Key()),
	)

	snap, err := h.datasets.Load(ctx, req.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	resolver := h.resolver.WithRadius(req.RadiusKm)
	res := resolver.Resolve(snap.Index, point, level)

	return utils.SendSuccess(c, dto.ResolveResponse{
		Resolution: res,
		Dataset:    snap.Context.Key(),
	}, &utils.Meta{
		RadiusKm: resolver.RadiusKm(),
		Dataset:  snap.Context.Key(),
	})
}

// Nearest godoc
// @Summary Best spot within radius
// @Description Спот с максимальным score для уровня в радиусе от точки
// @Tags Spots
// @Produce json
// @Param lat query number true "Широта"
// @Param lng query number true "Долгота"
// @Param date query string true "Дата yyyy-MM-dd"
// @Param time query string false "Время HH:mm"
// @Param level query string false "BEGINNER, INTERMEDIATE, ADVANCED"
// @Param radius_km query number false "Радиус поиска, км (до 500)"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearestResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/spots/nearest [get]
func (h *SpotHandler) Nearest(c *fiber.Ctx) error {
	ctx := c.Context()

	var req dto.NearestRequest
	if err := parseQuery(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	point := domain.GeoPoint{Lat: req.Lat, Lng: req.Lng}
	if !point.Valid() {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}
	level, _ := domain.ParseSurferLevel(req.Level)

	snap, err := h.datasets.Load(ctx, req.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	radius := h.resolver.WithRadius(req.RadiusKm).RadiusKm()
	rec, dist := snap.Index.NearestWithinRadius(point, radius, level)
	if rec == nil {
		return utils.SendError(c, errors.ErrSpotNotFound.WithDetails(map[string]interface{}{
			"radius_km": radius,
			"dataset":   snap.Context.Key(),
		}))
	}

	resp := dto.NearestResponse{
		Level:      level,
		RadiusKm:   radius,
		Record:     rec,
		DistanceKm: dist,
		Metrics:    usecase.MetricsForLevel(rec, level),
	}
	return utils.SendSuccess(c, resp, &utils.Meta{Total: 1, RadiusKm: radius, Dataset: snap.Context.Key()})
}
