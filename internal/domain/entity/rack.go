package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rack representa una ubicación física de almacenaje con capacidad finita,
// medida en dos dimensiones: cantidad de tubos y metros lineales.
// Invariante en cada commit: 0 <= occupied <= capacity en ambas dimensiones.
// Capacidad cero significa "sin aprovisionar" y exime esa dimensión del tope.
type Rack struct {
	ID             string
	CompanyID      string // "" = rack compartido del patio; no vacío = reservado a un tenant
	Code           string // código físico, ej. "A-1"
	CapacityUnits  int64
	OccupiedUnits  int64
	CapacityLength decimal.Decimal // metros
	OccupiedLength decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FreeUnits devuelve la capacidad libre en tubos. Capacidad cero = sin tope.
func (r *Rack) FreeUnits() (free int64, unbounded bool) {
	if r.CapacityUnits == 0 {
		return 0, true
	}
	return r.CapacityUnits - r.OccupiedUnits, false
}

// FreeLength devuelve la capacidad libre en metros. Capacidad cero = sin tope.
func (r *Rack) FreeLength() (free decimal.Decimal, unbounded bool) {
	if r.CapacityLength.IsZero() {
		return decimal.Zero, true
	}
	return r.CapacityLength.Sub(r.OccupiedLength), false
}

// Consistent verifica el invariante de ocupación del rack.
func (r *Rack) Consistent() bool {
	if r.OccupiedUnits < 0 || r.OccupiedLength.IsNegative() {
		return false
	}
	if r.CapacityUnits > 0 && r.OccupiedUnits > r.CapacityUnits {
		return false
	}
	if r.CapacityLength.IsPositive() && r.OccupiedLength.GreaterThan(r.CapacityLength) {
		return false
	}
	return true
}
