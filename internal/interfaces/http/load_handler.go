package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacenaje-api/internal/application/dto"
	"github.com/jhoicas/Almacenaje-api/internal/application/loads"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// LoadHandler seguimiento de cargas de camión de una solicitud.
type LoadHandler struct {
	uc *loads.TrackerUseCase
}

// NewLoadHandler construye el handler.
func NewLoadHandler(uc *loads.TrackerUseCase) *LoadHandler {
	return &LoadHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar carga planificada para una solicitud aprobada
// @Tags         loads
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.CreateLoadRequest  true  "dirección, rack y cifras planificadas"
// @Success      201   {object}  dto.LoadResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/requests/{id}/loads [post]
func (h *LoadHandler) Register(c *fiber.Ctx) error {
	var in dto.CreateLoadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	load, err := h.uc.Register(c.Context(), GetUserID(c), loads.RegisterLoadInput{
		RequestID:     c.Params("id"),
		Direction:     in.Direction,
		RackID:        in.RackID,
		PlannedUnits:  in.PlannedUnits,
		PlannedLength: in.PlannedLength,
		PlannedWeight: in.PlannedWeight,
	})
	if err != nil {
		return requestError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLoadResponse(load))
}

// ListByRequest godoc
// @Summary      Listar cargas de una solicitud
// @Tags         loads
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {array}  dto.LoadResponse
// @Security     BearerAuth
// @Router       /api/requests/{id}/loads [get]
func (h *LoadHandler) ListByRequest(c *fiber.Ctx) error {
	list, err := h.uc.ListByRequest(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.LoadResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLoadResponse(l))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Consultar una carga
// @Tags         loads
// @Produce      json
// @Param        id  path  string  true  "ID de la carga"
// @Success      200  {object}  dto.LoadResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/loads/{id} [get]
func (h *LoadHandler) GetByID(c *fiber.Ctx) error {
	load, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return requestError(c, err)
	}
	return c.JSON(toLoadResponse(load))
}

// Advance godoc
// @Summary      Avanzar el estado de una carga (APPROVED, IN_TRANSIT, CANCELLED)
// @Tags         loads
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la carga"
// @Param        body  body  dto.UpdateLoadStateRequest  true  "nuevo estado"
// @Success      200   {object}  dto.LoadResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/loads/{id}/state [put]
func (h *LoadHandler) Advance(c *fiber.Ctx) error {
	var in dto.UpdateLoadStateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	load, err := h.uc.Advance(c.Context(), c.Params("id"), in.State)
	if err != nil {
		return requestError(c, err)
	}
	return c.JSON(toLoadResponse(load))
}

// Complete godoc
// @Summary      Cerrar carga con el conteo físico real
// @Tags         loads
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la carga"
// @Param        body  body  dto.CompleteLoadRequest  true  "cifras reales"
// @Success      200   {object}  dto.LoadResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/loads/{id}/complete [post]
func (h *LoadHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteLoadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	load, err := h.uc.Complete(c.Context(), GetUserID(c), loads.CompleteLoadInput{
		LoadID:   c.Params("id"),
		Units:    in.Units,
		Length:   in.Length,
		Weight:   in.Weight,
		Diameter: in.Diameter,
	})
	if err != nil {
		return requestError(c, err)
	}
	return c.JSON(toLoadResponse(load))
}

// Manifest godoc
// @Summary      Descargar el manifiesto de carga en PDF
// @Tags         loads
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la carga"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/loads/{id}/manifest [get]
func (h *LoadHandler) Manifest(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.Manifest(c.Context(), c.Params("id"))
	if err != nil {
		return requestError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="manifiesto-`+c.Params("id")+`.pdf"`)
	return c.Send(pdfBytes)
}

func toLoadResponse(l *entity.TruckingLoad) dto.LoadResponse {
	return dto.LoadResponse{
		ID:              l.ID,
		RequestID:       l.RequestID,
		Direction:       l.Direction,
		Sequence:        l.Sequence,
		State:           l.State,
		RackID:          l.RackID,
		PlannedUnits:    l.PlannedUnits,
		PlannedLength:   l.PlannedLength,
		PlannedWeight:   l.PlannedWeight,
		CompletedUnits:  l.CompletedUnits,
		CompletedLength: l.CompletedLength,
		CompletedWeight: l.CompletedWeight,
		CompletedAt:     l.CompletedAt,
		CreatedAt:       l.CreatedAt,
	}
}
