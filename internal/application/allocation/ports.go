package allocation

import (
	"context"

	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad del ciclo de aprobación:
// estado de la solicitud, ocupación de racks, auditoría y encolado de la
// notificación se confirman o revierten juntos. Ningún I/O externo ocurre
// dentro de la transacción; la entrega la hace el worker por su cuenta.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		requestRepo repository.RequestRepository,
		rackRepo repository.RackRepository,
		auditRepo repository.AuditRepository,
		notifRepo repository.NotificationRepository,
	) error) error
}

// Authorizer resuelve si una identidad tiene derechos de operador del patio.
// Única fuente de verdad de autorización: no hay listas fijas paralelas.
type Authorizer interface {
	IsOperator(userID string) (bool, error)
}
