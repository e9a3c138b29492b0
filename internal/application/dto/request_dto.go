package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRequestRequest crea una solicitud de almacenaje en borrador.
type CreateRequestRequest struct {
	Reference       string          `json:"reference"`
	RequestedUnits  int64           `json:"requested_units"`
	RequestedLength decimal.Decimal `json:"requested_length"` // metros
	ContactEmail    string          `json:"contact_email"`
}

// ApproveRequestRequest aprobación con racks elegidos por el operador.
type ApproveRequestRequest struct {
	RackIDs        []string        `json:"rack_ids"`
	RequiredUnits  int64           `json:"required_units"`
	RequiredLength decimal.Decimal `json:"required_length"`
	Notes          string          `json:"notes"`
}

// RejectRequestRequest rechazo con motivo obligatorio.
type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

// AssignedShareDTO porción de la reserva aplicada a un rack.
type AssignedShareDTO struct {
	RackID string          `json:"rack_id"`
	Units  int64           `json:"units"`
	Length decimal.Decimal `json:"length"`
}

// ApproveResponse resultado de la aprobación.
type ApproveResponse struct {
	Status        string             `json:"status"`
	AssignedRacks []AssignedShareDTO `json:"assigned_racks"`
}

// RequestResponse proyección de una solicitud.
type RequestResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	Reference       string          `json:"reference"`
	State           string          `json:"state"`
	RequestedUnits  int64           `json:"requested_units"`
	RequestedLength decimal.Decimal `json:"requested_length"`
	AssignedRackIDs []string        `json:"assigned_rack_ids"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovalNotes   string          `json:"approval_notes,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
