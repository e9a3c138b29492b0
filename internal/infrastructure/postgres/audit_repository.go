package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación de AuditRepository sobre PostgreSQL.
// Solo INSERT y SELECT: el registro es inmutable por diseño.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador de auditoría. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta el registro de auditoría.
func (r *AuditRepo) Create(entry *entity.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (id, company_id, user_id, action, request_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.CompanyID, entry.UserID, entry.Action, entry.RequestID,
		entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// ListByRequest devuelve el rastro de una solicitud en orden cronológico.
func (r *AuditRepo) ListByRequest(requestID string) ([]*entity.AuditLogEntry, error) {
	query := `
		SELECT id, company_id, user_id, action, request_id, detail, created_at
		FROM audit_log WHERE request_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*entity.AuditLogEntry
	for rows.Next() {
		var entry entity.AuditLogEntry
		if err := rows.Scan(
			&entry.ID, &entry.CompanyID, &entry.UserID, &entry.Action, &entry.RequestID,
			&entry.Detail, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}
