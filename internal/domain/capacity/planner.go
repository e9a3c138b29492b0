// Package capacity implementa la contabilidad de ocupación de racks: dado un
// conjunto de racks elegidos por el operador, reparte una reserva entre ellos
// de forma todo-o-nada, sin exceder jamás la capacidad declarada.
package capacity

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// Share es la porción de una reserva asignada a un rack concreto.
type Share struct {
	RackID string
	Units  int64
	Length decimal.Decimal
}

// PlanReservation reparte units tubos y length metros entre los racks dados,
// en el orden dado (elección del operador, no bin-packing automático).
//
// Reglas:
//   - Llenado voraz: cada rack absorbe hasta su capacidad libre en tubos;
//     un rack con capacidad cero está "sin aprovisionar" y absorbe sin tope.
//   - El largo se reparte proporcional a los tubos asignados; el último rack
//     con asignación recibe el resto para no perder precisión decimal.
//   - Todo-o-nada: si los racks no absorben la totalidad, o el largo asignado
//     no cabe en algún rack, se devuelve ErrCapacityExceeded sin plan parcial.
//
// PlanReservation no muta los racks: validar-antes-de-aplicar es
// responsabilidad del llamador dentro de su transacción.
func PlanReservation(racks []*entity.Rack, units int64, length decimal.Decimal) ([]Share, error) {
	if len(racks) == 0 || units <= 0 || length.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	shares := make([]Share, 0, len(racks))
	remaining := units
	for _, r := range racks {
		if remaining == 0 {
			break
		}
		free, unbounded := r.FreeUnits()
		take := remaining
		if !unbounded && take > free {
			take = free
		}
		if take <= 0 {
			continue
		}
		shares = append(shares, Share{RackID: r.ID, Units: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, domain.ErrCapacityExceeded
	}

	// Reparto del largo proporcional a los tubos; el resto al último.
	total := decimal.NewFromInt(units)
	assigned := decimal.Zero
	for i := range shares {
		if i == len(shares)-1 {
			shares[i].Length = length.Sub(assigned)
			break
		}
		portion := length.Mul(decimal.NewFromInt(shares[i].Units)).Div(total).Round(3)
		shares[i].Length = portion
		assigned = assigned.Add(portion)
	}

	// Verificación del largo antes de aplicar nada.
	byID := make(map[string]*entity.Rack, len(racks))
	for _, r := range racks {
		byID[r.ID] = r
	}
	for _, s := range shares {
		freeLen, unbounded := byID[s.RackID].FreeLength()
		if !unbounded && s.Length.GreaterThan(freeLen) {
			return nil, domain.ErrCapacityExceeded
		}
	}
	return shares, nil
}

// Apply suma las porciones del plan a la ocupación de cada rack. Los racks
// deben venir bloqueados por el llamador (SELECT FOR UPDATE) para que dos
// aprobaciones concurrentes no pasen la verificación con valores obsoletos.
func Apply(racks map[string]*entity.Rack, shares []Share) error {
	for _, s := range shares {
		r, ok := racks[s.RackID]
		if !ok {
			return domain.ErrNotFound
		}
		r.OccupiedUnits += s.Units
		r.OccupiedLength = r.OccupiedLength.Add(s.Length)
		if !r.Consistent() {
			return domain.ErrCapacityExceeded
		}
	}
	return nil
}

// Release resta una cantidad de la ocupación de un rack, con piso en cero
// (la ocupación nunca es negativa).
func Release(r *entity.Rack, units int64, length decimal.Decimal) {
	r.OccupiedUnits -= units
	if r.OccupiedUnits < 0 {
		r.OccupiedUnits = 0
	}
	r.OccupiedLength = r.OccupiedLength.Sub(length)
	if r.OccupiedLength.IsNegative() {
		r.OccupiedLength = decimal.Zero
	}
}
