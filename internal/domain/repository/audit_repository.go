package repository

import "github.com/jhoicas/Almacenaje-api/internal/domain/entity"

// AuditRepository define el puerto del registro de auditoría. Append-only:
// no hay Update ni Delete por diseño del modelo.
type AuditRepository interface {
	Create(entry *entity.AuditLogEntry) error
	ListByRequest(requestID string) ([]*entity.AuditLogEntry, error)
}
