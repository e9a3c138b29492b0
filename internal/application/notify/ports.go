package notify

import (
	"context"

	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// EmailSender puerto hacia el canal de correo. El adaptador concreto es un
// colaborador externo; el despachador solo exige que respete el contexto
// (timeout por intento) y devuelva error en fallo.
type EmailSender interface {
	SendEmail(ctx context.Context, payload entity.NotificationPayload) error
}

// ChatSender puerto hacia el canal de chat (webhook).
type ChatSender interface {
	SendChatMessage(ctx context.Context, payload entity.NotificationPayload) error
}

// TxRunner ejecuta una pasada de despacho dentro de una transacción: el
// bloqueo de fila de ClaimBatch (SKIP LOCKED) vive lo que dura la pasada,
// de modo que dos workers concurrentes nunca reclaman la misma entrada.
type TxRunner interface {
	RunNotifications(ctx context.Context, fn func(
		notifRepo repository.NotificationRepository,
	) error) error
}
