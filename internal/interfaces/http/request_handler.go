package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacenaje-api/internal/application/allocation"
	"github.com/jhoicas/Almacenaje-api/internal/application/dto"
	"github.com/jhoicas/Almacenaje-api/internal/application/usecase"
	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// RequestHandler maneja las solicitudes de almacenaje: ciclo de vida del
// cliente (crear, enviar, consultar) y resolución del operador (aprobar,
// rechazar, archivar).
type RequestHandler struct {
	requestUC *usecase.RequestUseCase
	coordUC   *allocation.CoordinatorUseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(requestUC *usecase.RequestUseCase, coordUC *allocation.CoordinatorUseCase) *RequestHandler {
	return &RequestHandler{requestUC: requestUC, coordUC: coordUC}
}

// Create godoc
// @Summary      Crear solicitud de almacenaje (queda en DRAFT)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestRequest  true  "referencia y cantidades"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.requestUC.Create(usecase.CreateInput{
		CompanyID:       GetCompanyID(c),
		Reference:       in.Reference,
		RequestedUnits:  in.RequestedUnits,
		RequestedLength: in.RequestedLength,
		ContactEmail:    in.ContactEmail,
	})
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "referencia, cantidades y contacto son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toRequestResponse(req))
}

// Submit godoc
// @Summary      Enviar solicitud a revisión (DRAFT → PENDING)
// @Tags         requests
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/requests/{id}/submit [post]
func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	req, err := h.requestUC.Submit(c.Params("id"), GetCompanyID(c))
	if err != nil {
		return requestError(c, err)
	}
	return c.JSON(toRequestResponse(req))
}

// GetByID godoc
// @Summary      Consultar una solicitud
// @Tags         requests
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	operator := GetRole(c) == entity.RoleOperador
	req, err := h.requestUC.GetByID(c.Params("id"), GetCompanyID(c), operator)
	if err != nil {
		return requestError(c, err)
	}
	return c.JSON(toRequestResponse(req))
}

// List godoc
// @Summary      Listar solicitudes (el operador ve las de todas las empresas)
// @Tags         requests
// @Produce      json
// @Param        include_archived  query  bool  false  "incluir archivadas"
// @Success      200  {array}  dto.RequestResponse
// @Security     BearerAuth
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	operator := GetRole(c) == entity.RoleOperador
	includeArchived := c.QueryBool("include_archived", false)
	reqs, err := h.requestUC.List(GetCompanyID(c), operator, includeArchived)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.RequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toRequestResponse(r))
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar solicitud reservando capacidad en racks (solo operador)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.ApproveRequestRequest  true  "racks y cantidades"
// @Success      200   {object}  dto.ApproveResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actor := allocation.Actor{UserID: GetUserID(c), CompanyID: GetCompanyID(c)}
	result, err := h.coordUC.Approve(c.Context(), actor, allocation.ApproveInput{
		RequestID:      c.Params("id"),
		RackIDs:        in.RackIDs,
		RequiredUnits:  in.RequiredUnits,
		RequiredLength: in.RequiredLength,
		Notes:          in.Notes,
	})
	if err != nil {
		return requestError(c, err)
	}
	shares := make([]dto.AssignedShareDTO, 0, len(result.Shares))
	for _, s := range result.Shares {
		shares = append(shares, dto.AssignedShareDTO{RackID: s.RackID, Units: s.Units, Length: s.Length})
	}
	return c.JSON(dto.ApproveResponse{Status: result.Status, AssignedRacks: shares})
}

// Reject godoc
// @Summary      Rechazar solicitud con motivo (solo operador)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.RejectRequestRequest  true  "motivo"
// @Success      204   "sin contenido"
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actor := allocation.Actor{UserID: GetUserID(c), CompanyID: GetCompanyID(c)}
	if err := h.coordUC.Reject(c.Context(), actor, c.Params("id"), in.Reason); err != nil {
		return requestError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Archive godoc
// @Summary      Archivar solicitud resuelta (solo operador; nunca se borra)
// @Tags         requests
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/requests/{id}/archive [post]
func (h *RequestHandler) Archive(c *fiber.Ctx) error {
	if err := h.requestUC.Archive(c.Params("id"), GetUserID(c)); err != nil {
		return requestError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// requestError mapea la taxonomía de errores del dominio a códigos HTTP.
func requestError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case domain.ErrUnauthorized:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "solo un operador puede ejecutar esta operación"})
	case domain.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case domain.ErrInvalidState:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "la operación no es válida en el estado actual"})
	case domain.ErrCapacityExceeded:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CAPACITY_EXCEEDED", Message: "los racks elegidos no tienen capacidad suficiente"})
	case domain.ErrDuplicate:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toRequestResponse(r *entity.StorageRequest) dto.RequestResponse {
	return dto.RequestResponse{
		ID:              r.ID,
		CompanyID:       r.CompanyID,
		Reference:       r.Reference,
		State:           r.State,
		RequestedUnits:  r.RequestedUnits,
		RequestedLength: r.RequestedLength,
		AssignedRackIDs: r.AssignedRackIDs,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		ApprovalNotes:   r.ApprovalNotes,
		RejectionReason: r.RejectionReason,
		Archived:        r.Archived,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
