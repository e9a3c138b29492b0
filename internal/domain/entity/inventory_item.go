package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del inventario físico de tubería.
// PENDING_DELIVERY -> IN_STORAGE -> {PICKED_UP, IN_TRANSIT}.
const (
	ItemStatePendingDelivery = "PENDING_DELIVERY"
	ItemStateInStorage       = "IN_STORAGE"
	ItemStatePickedUp        = "PICKED_UP"
	ItemStateInTransit       = "IN_TRANSIT"
)

// InventoryItem representa un lote de tubos de un cliente dentro del patio.
// Invariante: State IN_STORAGE implica RackID no vacío.
type InventoryItem struct {
	ID        string
	CompanyID string
	RequestID string
	LoadID    string // carga entrante que lo dejó en el patio
	State     string
	Units     int64
	Length    decimal.Decimal // metros totales del lote
	Weight    decimal.Decimal // toneladas
	Diameter  string          // atributo físico, ej. `9 5/8"`
	RackID    string          // vacío hasta que se almacena
	CreatedAt time.Time
	UpdatedAt time.Time
}
