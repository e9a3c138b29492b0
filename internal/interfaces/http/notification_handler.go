package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacenaje-api/internal/application/dto"
	"github.com/jhoicas/Almacenaje-api/internal/application/notify"
)

// NotificationHandler operación de la cola de notificaciones (solo operador):
// disparo manual del worker, inspección de fallos y reenvío.
type NotificationHandler struct {
	uc *notify.DispatcherUseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(uc *notify.DispatcherUseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// Dispatch godoc
// @Summary      Ejecutar una pasada del worker de notificaciones
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notify.Summary
// @Security     BearerAuth
// @Router       /api/notifications/dispatch [post]
func (h *NotificationHandler) Dispatch(c *fiber.Ctx) error {
	summary, err := h.uc.RunOnce(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(summary)
}

// ListFailed godoc
// @Summary      Listar notificaciones con reintentos agotados
// @Tags         notifications
// @Produce      json
// @Success      200  {array}  dto.FailedNotificationResponse
// @Security     BearerAuth
// @Router       /api/notifications/failed [get]
func (h *NotificationHandler) ListFailed(c *fiber.Ctx) error {
	failed, err := h.uc.ListFailed(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.FailedNotificationResponse, 0, len(failed))
	for _, e := range failed {
		out = append(out, dto.FailedNotificationResponse{
			ID:            e.ID,
			Type:          e.Type,
			RequestID:     e.RequestID,
			Recipient:     e.Payload.Recipient,
			Subject:       e.Payload.Subject,
			Attempts:      e.Attempts,
			LastError:     e.LastError,
			LastAttemptAt: e.LastAttemptAt,
			CreatedAt:     e.CreatedAt,
		})
	}
	return c.JSON(out)
}

// Resend godoc
// @Summary      Reenviar una notificación fallida (reinicia el contador)
// @Tags         notifications
// @Produce      json
// @Param        id  path  string  true  "ID de la notificación"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/notifications/{id}/resend [post]
func (h *NotificationHandler) Resend(c *fiber.Ctx) error {
	if err := h.uc.Resend(c.Context(), c.Params("id")); err != nil {
		return requestError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
