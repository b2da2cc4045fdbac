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

// ViewportHandler - сверка маркеров для видимой области карты.
// Клиент присылает уже нарисованные маркеры и получает только разницу.
type ViewportHandler struct {
	datasets usecase.DatasetLoader
	logger   *zap.Logger
}

// NewViewportHandler создаёт новый ViewportHandler
func NewViewportHandler(datasets usecase.DatasetLoader, logger *zap.Logger) *ViewportHandler {
	return &ViewportHandler{
		datasets: datasets,
		logger:   logger,
	}
}

// Reconcile godoc
// @Summary Reconcile viewport markers
// @Description Минимальный набор add/remove операций: сначала удаления, потом добавления
// @Tags Viewport
// @Accept json
// @Produce json
// @Param request body dto.ReconcileRequest true "Видимая область, фильтр, нарисованные маркеры"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReconcileResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/viewport/reconcile [post]
func (h *ViewportHandler) Reconcile(c *fiber.Ctx) error {
	ctx := c.Context()

	var req dto.ReconcileRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if !req.Viewport.Valid() {
		return utils.SendError(c, errors.ErrInvalidViewport)
	}

	snap, err := h.datasets.Load(ctx, req.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	records := usecase.FilterRecords(snap.Index.Records(), req.Filter)
	desired := usecase.DesiredMarkers(records, req.Saved, utils.NewRectBounds(req.Viewport))

	rendered := make(usecase.MarkerSet, len(req.Rendered))
	for _, m := range req.Rendered {
		rendered[m.Key] = domain.Marker{
			Key:        m.Key,
			Kind:       m.Key.Kind(),
			LocationID: m.Key.LocationID(),
			Badge:      m.Badge,
		}
	}

	ops := usecase.Reconcile(rendered, desired)

	h.logger.Debug("Viewport reconciled",
		zap.String("dataset", snap.Context.Key()),
		zap.Int("rendered", len(rendered)),
		zap.Int("desired", len(desired)),
		zap.Int("ops", len(ops)),
	)

	if ops == nil {
		ops = []domain.MarkerOp{}
	}
	return utils.SendSuccess(c, dto.ReconcileResponse{
		Ops:     ops,
		Markers: len(desired),
		Dataset: snap.Context.Key(),
	}, &utils.Meta{Total: len(ops)})
}
