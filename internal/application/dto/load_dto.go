package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLoadRequest registra una carga de camión planificada para una solicitud.
type CreateLoadRequest struct {
	Direction     string          `json:"direction"` // INBOUND | OUTBOUND
	RackID        string          `json:"rack_id"`
	PlannedUnits  int64           `json:"planned_units"`
	PlannedLength decimal.Decimal `json:"planned_length"` // metros
	PlannedWeight decimal.Decimal `json:"planned_weight"` // toneladas
}

// UpdateLoadStateRequest transición simple de estado (APPROVED, IN_TRANSIT, CANCELLED).
type UpdateLoadStateRequest struct {
	State string `json:"state"`
}

// CompleteLoadRequest cierre de carga con las cifras reales del conteo físico.
type CompleteLoadRequest struct {
	Units    int64           `json:"units"`
	Length   decimal.Decimal `json:"length"`
	Weight   decimal.Decimal `json:"weight"`
	Diameter string          `json:"diameter"`
}

// LoadResponse proyección de una carga.
type LoadResponse struct {
	ID              string          `json:"id"`
	RequestID       string          `json:"request_id"`
	Direction       string          `json:"direction"`
	Sequence        int             `json:"sequence"`
	State           string          `json:"state"`
	RackID          string          `json:"rack_id"`
	PlannedUnits    int64           `json:"planned_units"`
	PlannedLength   decimal.Decimal `json:"planned_length"`
	PlannedWeight   decimal.Decimal `json:"planned_weight"`
	CompletedUnits  int64           `json:"completed_units"`
	CompletedLength decimal.Decimal `json:"completed_length"`
	CompletedWeight decimal.Decimal `json:"completed_weight"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
