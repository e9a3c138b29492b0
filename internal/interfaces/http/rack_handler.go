package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacenaje-api/internal/application/dto"
	"github.com/jhoicas/Almacenaje-api/internal/application/usecase"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// RackHandler administración de racks del patio (solo operador).
type RackHandler struct {
	uc *usecase.RackUseCase
}

// NewRackHandler construye el handler.
func NewRackHandler(uc *usecase.RackUseCase) *RackHandler {
	return &RackHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar rack (capacidad cero = sin aprovisionar)
// @Tags         racks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRackRequest  true  "código y capacidades"
// @Success      201   {object}  dto.RackResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/racks [post]
func (h *RackHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRackRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rack, err := h.uc.Create(usecase.CreateRackInput{
		Code:           in.Code,
		CompanyID:      in.CompanyID,
		CapacityUnits:  in.CapacityUnits,
		CapacityLength: in.CapacityLength,
	})
	if err != nil {
		return requestError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toRackResponse(rack))
}

// List godoc
// @Summary      Listar racks con su ocupación actual
// @Tags         racks
// @Produce      json
// @Success      200  {array}  dto.RackResponse
// @Security     BearerAuth
// @Router       /api/racks [get]
func (h *RackHandler) List(c *fiber.Ctx) error {
	racks, err := h.uc.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.RackResponse, 0, len(racks))
	for _, r := range racks {
		out = append(out, toRackResponse(r))
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Recalcular ocupación desde el inventario almacenado
// @Tags         racks
// @Produce      json
// @Param        id  path  string  true  "ID del rack"
// @Success      200  {object}  dto.RackResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/racks/{id}/reconcile [post]
func (h *RackHandler) Reconcile(c *fiber.Ctx) error {
	rack, err := h.uc.Reconcile(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return requestError(c, err)
	}
	return c.JSON(toRackResponse(rack))
}

func toRackResponse(r *entity.Rack) dto.RackResponse {
	return dto.RackResponse{
		ID:             r.ID,
		Code:           r.Code,
		CompanyID:      r.CompanyID,
		CapacityUnits:  r.CapacityUnits,
		OccupiedUnits:  r.OccupiedUnits,
		CapacityLength: r.CapacityLength,
		OccupiedLength: r.OccupiedLength,
	}
}
