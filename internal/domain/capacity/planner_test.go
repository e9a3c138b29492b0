package capacity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/capacity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func rack(id string, capUnits, occUnits int64, capLen, occLen string) *entity.Rack {
	return &entity.Rack{
		ID:             id,
		Code:           id,
		CapacityUnits:  capUnits,
		OccupiedUnits:  occUnits,
		CapacityLength: decimal.RequireFromString(capLen),
		OccupiedLength: decimal.RequireFromString(occLen),
	}
}

func meters(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// PlanReservation
// ──────────────────────────────────────────────────────────────────────────────

// Escenario feliz del repartidor: 150 tubos sobre dos racks con 200 libres
// en conjunto. A-1 absorbe sus 100 libres y A-2 el resto.
func TestPlanReservation_RepartoEntreDosRacks(t *testing.T) {
	racks := []*entity.Rack{
		rack("A-1", 100, 0, "1200", "0"),
		rack("A-2", 150, 50, "1800", "600"),
	}

	shares, err := capacity.PlanReservation(racks, 150, meters("1800"))
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, int64(100), shares[0].Units)
	assert.Equal(t, int64(50), shares[1].Units)

	// El largo se reparte proporcional y suma exacta (el último recibe el resto).
	sum := shares[0].Length.Add(shares[1].Length)
	assert.True(t, sum.Equal(meters("1800")), "el largo repartido debe sumar el total")
}

// Sobreventa: A-1 con 10 tubos libres no puede absorber 50. Todo-o-nada:
// no hay plan parcial y el error es de capacidad.
func TestPlanReservation_SobreventaFalla(t *testing.T) {
	racks := []*entity.Rack{rack("A-1", 100, 90, "1200", "1080")}

	shares, err := capacity.PlanReservation(racks, 50, meters("600"))
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Nil(t, shares)
	// El planificador no muta los racks
	assert.Equal(t, int64(90), racks[0].OccupiedUnits)
}

// Un rack sin aprovisionar (capacidad cero) queda exento del tope y absorbe
// todo lo que los demás no pudieron.
func TestPlanReservation_CapacidadCeroSinTope(t *testing.T) {
	racks := []*entity.Rack{
		rack("A-1", 20, 20, "240", "240"), // lleno
		rack("B-1", 0, 0, "0", "0"),       // sin aprovisionar
	}

	shares, err := capacity.PlanReservation(racks, 500, meters("6000"))
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "B-1", shares[0].RackID)
	assert.Equal(t, int64(500), shares[0].Units)
}

// El largo también es dimensión dura: aunque quepan los tubos, si los metros
// no caben en algún rack la reserva completa falla.
func TestPlanReservation_LargoExcedidoFalla(t *testing.T) {
	racks := []*entity.Rack{rack("A-1", 100, 0, "100", "95")}

	_, err := capacity.PlanReservation(racks, 10, meters("120"))
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

// Entradas inválidas: sin racks o cantidades no positivas.
func TestPlanReservation_EntradaInvalida(t *testing.T) {
	_, err := capacity.PlanReservation(nil, 10, meters("100"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = capacity.PlanReservation([]*entity.Rack{rack("A-1", 10, 0, "100", "0")}, 0, meters("100"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Apply / Release
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_ActualizaOcupacion(t *testing.T) {
	r1 := rack("A-1", 100, 10, "1200", "120")
	racks := map[string]*entity.Rack{"A-1": r1}

	err := capacity.Apply(racks, []capacity.Share{{RackID: "A-1", Units: 40, Length: meters("480")}})
	require.NoError(t, err)
	assert.Equal(t, int64(50), r1.OccupiedUnits)
	assert.True(t, r1.OccupiedLength.Equal(meters("600")))
	assert.True(t, r1.Consistent())
}

// Apply revalida el invariante: una porción que rompería occupied <= capacity
// se rechaza aunque el plan viniera de otra parte.
func TestApply_RompeInvarianteFalla(t *testing.T) {
	racks := map[string]*entity.Rack{"A-1": rack("A-1", 100, 90, "1200", "1080")}

	err := capacity.Apply(racks, []capacity.Share{{RackID: "A-1", Units: 20, Length: meters("240")}})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestRelease_PisoEnCero(t *testing.T) {
	r := rack("A-1", 100, 5, "1200", "60")

	capacity.Release(r, 10, meters("120"))
	assert.Equal(t, int64(0), r.OccupiedUnits)
	assert.True(t, r.OccupiedLength.IsZero())
}
