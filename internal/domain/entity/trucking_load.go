package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de una carga de camión.
const (
	LoadDirectionInbound  = "INBOUND"
	LoadDirectionOutbound = "OUTBOUND"
)

// Estados de una carga: NEW -> APPROVED -> IN_TRANSIT -> COMPLETED, o CANCELLED.
const (
	LoadStateNew       = "NEW"
	LoadStateApproved  = "APPROVED"
	LoadStateInTransit = "IN_TRANSIT"
	LoadStateCompleted = "COMPLETED"
	LoadStateCancelled = "CANCELLED"
)

// TruckingLoad representa un movimiento de camión (entrada o salida) ligado a
// una solicitud. Sequence es único por (solicitud, dirección), inicia en 1.
// COMPLETED implica CompletedAt no nulo y cifras reales registradas.
type TruckingLoad struct {
	ID              string
	RequestID       string
	CompanyID       string
	Direction       string
	Sequence        int
	State           string
	RackID          string // rack de destino (INBOUND) u origen (OUTBOUND)
	PlannedUnits    int64
	PlannedLength   decimal.Decimal // metros
	PlannedWeight   decimal.Decimal // toneladas
	CompletedUnits  int64
	CompletedLength decimal.Decimal
	CompletedWeight decimal.Decimal
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// loadTransitions define las transiciones válidas del ciclo de vida de cargas.
var loadTransitions = map[string][]string{
	LoadStateNew:       {LoadStateApproved, LoadStateCancelled},
	LoadStateApproved:  {LoadStateInTransit, LoadStateCancelled},
	LoadStateInTransit: {LoadStateCompleted, LoadStateCancelled},
}

// CanTransition indica si la carga puede pasar al estado destino.
func (l *TruckingLoad) CanTransition(to string) bool {
	for _, next := range loadTransitions[l.State] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal indica si la carga alcanzó un estado final.
func (l *TruckingLoad) Terminal() bool {
	return l.State == LoadStateCompleted || l.State == LoadStateCancelled
}
