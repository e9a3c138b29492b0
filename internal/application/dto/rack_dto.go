package dto

import "github.com/shopspring/decimal"

// CreateRackRequest alta de rack. Capacidad cero = "sin aprovisionar".
type CreateRackRequest struct {
	Code           string          `json:"code"`
	CompanyID      string          `json:"company_id"` // vacío = rack compartido
	CapacityUnits  int64           `json:"capacity_units"`
	CapacityLength decimal.Decimal `json:"capacity_length"` // metros
}

// RackResponse proyección de un rack con su ocupación actual.
type RackResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	CompanyID      string          `json:"company_id,omitempty"`
	CapacityUnits  int64           `json:"capacity_units"`
	OccupiedUnits  int64           `json:"occupied_units"`
	CapacityLength decimal.Decimal `json:"capacity_length"`
	OccupiedLength decimal.Decimal `json:"occupied_length"`
}
