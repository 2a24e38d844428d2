package stocktake

import (
	"errors"
	"strconv"

	"stocktake-manager/core/logger"
	"stocktake-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for stocktakes.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the stocktake routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/stocktakes")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleList)
	group.Get("/active", h.HandleActive)
	group.Get("/:id", h.HandleGet)
	group.Post("/:id/finish", h.HandleFinish)
	group.Post("/:id/counts", h.HandleSubmitCounts)
	group.Delete("/:id/counts/:syncId", h.HandleDeleteCount)
	group.Post("/:id/adjustments", h.HandleAdjust)
	group.Get("/:id/adjustments", h.HandleAdjustments)
	group.Get("/:id/variance", h.HandleVariance)
	group.Post("/:id/export", h.HandleExport)
}

type createRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
}

type finishRequest struct {
	CompletedBy string `json:"completed_by"`
}

type countsRequest struct {
	Events []reconcile.CountEvent `json:"events"`
}

// HandleCreate creates a new stocktake.
// @Summary Create Stocktake
// @Description Imports the theoretical baseline and barcode mapping, then creates a new active stocktake. Rejected while another stocktake is active.
// @Tags stocktake
// @Accept json
// @Produce json
// @Param request body createRequest true "Stocktake metadata"
// @Success 201 {object} models.Stocktake "Created Stocktake"
// @Failure 409 {object} map[string]string "Active Stocktake Exists"
// @Failure 502 {object} map[string]string "Import Failed"
// @Router /stocktakes [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	st, err := h.service.Create(c.Context(), req.Name, req.CreatedBy)
	if err != nil {
		l.Error("Stocktake creation failed", zap.Error(err))
		return h.errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(st)
}

// HandleList lists all stocktakes.
// @Summary List Stocktakes
// @Description Lists all stocktakes, newest first. Completed stocktakes form the historical list.
// @Tags stocktake
// @Produce json
// @Success 200 {array} models.Stocktake "Stocktakes"
// @Router /stocktakes [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	sts, err := h.service.List(c.Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(sts)
}

// HandleActive returns the current active stocktake.
// @Summary Get Active Stocktake
// @Description Returns the current active stocktake, if any.
// @Tags stocktake
// @Produce json
// @Success 200 {object} models.Stocktake "Active Stocktake"
// @Failure 404 {object} map[string]string "No Active Stocktake"
// @Router /stocktakes/active [get]
func (h *Handler) HandleActive(c *fiber.Ctx) error {
	st, err := h.service.Active(c.Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(st)
}

// HandleGet returns a stocktake by id.
// @Summary Get Stocktake
// @Tags stocktake
// @Produce json
// @Param id path int true "Stocktake ID"
// @Success 200 {object} models.Stocktake "Stocktake"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /stocktakes/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	st, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(st)
}

// HandleFinish completes a stocktake.
// @Summary Finish Stocktake
// @Description Performs the one-way active to completed transition. Further counts and adjustments are rejected.
// @Tags stocktake
// @Accept json
// @Produce json
// @Param id path int true "Stocktake ID"
// @Param request body finishRequest true "Completion metadata"
// @Success 200 {object} models.Stocktake "Completed Stocktake"
// @Failure 409 {object} map[string]string "Not Active"
// @Router /stocktakes/{id}/finish [post]
func (h *Handler) HandleFinish(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req finishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	st, err := h.service.Finish(c.Context(), id, req.CompletedBy)
	if err != nil {
		l.Error("Stocktake finish failed", zap.Error(err), zap.Uint("id", id))
		return h.errorResponse(c, err)
	}

	return c.JSON(st)
}

// HandleSubmitCounts applies a batch of count events from a device.
// @Summary Sync Count Events
// @Description Applies a batch of count events. Each event is an idempotent upsert keyed by sync_id, so device retries are safe.
// @Tags stocktake
// @Accept json
// @Produce json
// @Param id path int true "Stocktake ID"
// @Param request body countsRequest true "Count events"
// @Success 200 {object} SubmitResult "Per-event acknowledgement"
// @Failure 409 {object} map[string]string "Not Active"
// @Router /stocktakes/{id}/counts [post]
func (h *Handler) HandleSubmitCounts(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req countsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.service.SubmitCounts(c.Context(), id, req.Events)
	if err != nil {
		l.Warn("Count batch rejected", zap.Error(err), zap.Uint("id", id), zap.Int("events", len(req.Events)))
		return h.errorResponse(c, err)
	}

	return c.JSON(result)
}

// HandleDeleteCount removes a count event by sync id.
// @Summary Delete Count Event
// @Description Removes a count event, propagated from a device deletion. Idempotent.
// @Tags stocktake
// @Produce json
// @Param id path int true "Stocktake ID"
// @Param syncId path string true "Count Sync ID"
// @Success 204 "Deleted"
// @Failure 409 {object} map[string]string "Not Active"
// @Router /stocktakes/{id}/counts/{syncId} [delete]
func (h *Handler) HandleDeleteCount(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.service.DeleteCount(c.Context(), id, c.Params("syncId")); err != nil {
		return h.errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAdjust appends a manual count override.
// @Summary Record Adjustment
// @Description Appends an audit-trail override for a product. The latest record per product wins at report time.
// @Tags stocktake
// @Accept json
// @Produce json
// @Param id path int true "Stocktake ID"
// @Param request body reconcile.Adjustment true "Adjustment"
// @Success 201 "Recorded"
// @Failure 409 {object} map[string]string "Not Active"
// @Router /stocktakes/{id}/adjustments [post]
func (h *Handler) HandleAdjust(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var adj reconcile.Adjustment
	if err := c.BodyParser(&adj); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.service.Adjust(c.Context(), id, adj); err != nil {
		l.Error("Adjustment failed", zap.Error(err), zap.Uint("id", id))
		return h.errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusCreated)
}

// HandleAdjustments returns the audit trail.
// @Summary List Adjustments
// @Tags stocktake
// @Produce json
// @Param id path int true "Stocktake ID"
// @Success 200 {array} reconcile.Adjustment "Audit trail"
// @Router /stocktakes/{id}/adjustments [get]
func (h *Handler) HandleAdjustments(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	adjustments, err := h.service.Adjustments(c.Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(adjustments)
}

// HandleVariance computes the variance report.
// @Summary Variance Report
// @Description Computes the per-product variance report and summary for a stocktake, including unmatched/fuzzy diagnostics.
// @Tags stocktake
// @Produce json
// @Param id path int true "Stocktake ID"
// @Success 200 {object} reconcile.Report "Variance Report"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /stocktakes/{id}/variance [get]
func (h *Handler) HandleVariance(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.service.Report(c.Context(), id)
	if err != nil {
		l.Error("Variance report failed", zap.Error(err), zap.Uint("id", id))
		return h.errorResponse(c, err)
	}

	return c.JSON(report)
}

// HandleExport uploads the DAT export to object storage.
// @Summary DAT Export
// @Description Renders the DAT export lines for a stocktake and uploads the artifact to object storage.
// @Tags stocktake
// @Produce json
// @Param id path int true "Stocktake ID"
// @Success 200 {object} map[string]interface{} "Export result"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /stocktakes/{id}/export [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	object, lines, err := h.service.ExportDAT(c.Context(), id)
	if err != nil {
		l.Error("DAT export failed", zap.Error(err), zap.Uint("id", id))
		return h.errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"object": object, "lines": lines})
}

// errorResponse maps service errors to HTTP statuses.
func (h *Handler) errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrStocktakeNotFound), errors.Is(err, ErrNoActiveStocktake):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrStocktakeNotActive), errors.Is(err, ErrActiveStocktakeExists):
		status = fiber.StatusConflict
	case errors.Is(err, ErrImportFailed):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, errors.New("invalid stocktake id")
	}
	return uint(id), nil
}
