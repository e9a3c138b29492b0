package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una solicitud de almacenaje.
// DRAFT -> PENDING -> {APPROVED, REJECTED} -> COMPLETED.
// El archivado de una solicitud resuelta es una bandera lateral, no un estado.
const (
	RequestStateDraft     = "DRAFT"
	RequestStatePending   = "PENDING"
	RequestStateApproved  = "APPROVED"
	RequestStateRejected  = "REJECTED"
	RequestStateCompleted = "COMPLETED"
)

// StorageRequest representa la solicitud de un cliente para almacenar tubería
// en el patio. Nunca se borra físicamente: se archiva.
type StorageRequest struct {
	ID              string
	CompanyID       string // empresa dueña (tenant)
	Reference       string // referencia legible, ej. "REF-001"
	State           string
	RequestedUnits  int64           // cantidad de tubos solicitada
	RequestedLength decimal.Decimal // metros lineales solicitados
	AssignedRackIDs []string        // no vacío sii State es APPROVED o posterior
	ApprovedBy      string
	ApprovedAt      *time.Time
	ApprovalNotes   string
	RejectionReason string
	ContactEmail    string // destinatario de las notificaciones de la solicitud
	Archived        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Resolvable indica si la solicitud puede aprobarse o rechazarse.
// Solo PENDING es resoluble; reintentar sobre una solicitud ya resuelta
// debe fallar de forma determinista (protección de idempotencia).
func (r *StorageRequest) Resolvable() bool {
	return r.State == RequestStatePending
}

// Submittable indica si la solicitud puede pasar de DRAFT a PENDING.
func (r *StorageRequest) Submittable() bool {
	return r.State == RequestStateDraft
}

// Archivable indica si la solicitud puede archivarse (solo resueltas o completadas).
func (r *StorageRequest) Archivable() bool {
	switch r.State {
	case RequestStateApproved, RequestStateRejected, RequestStateCompleted:
		return true
	}
	return false
}
