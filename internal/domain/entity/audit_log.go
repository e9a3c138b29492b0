package entity

import "time"

// Acciones administrativas auditadas.
const (
	AuditActionApprove   = "APPROVE_REQUEST"
	AuditActionReject    = "REJECT_REQUEST"
	AuditActionArchive   = "ARCHIVE_REQUEST"
	AuditActionReconcile = "RECONCILE_RACK"
)

// AuditLogEntry es el registro inmutable de una acción administrativa:
// quién, qué, cuándo y sobre qué solicitud. Append-only, nunca se muta.
type AuditLogEntry struct {
	ID        string
	CompanyID string
	UserID    string
	Action    string
	RequestID string
	Detail    string // texto libre: notas de aprobación, motivo de rechazo...
	CreatedAt time.Time
}
