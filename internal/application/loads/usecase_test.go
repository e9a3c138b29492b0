package loads_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacenaje-api/internal/application/loads"
	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeLoadRepo struct {
	loads map[string]*entity.TruckingLoad
}

func (f *fakeLoadRepo) Create(l *entity.TruckingLoad) error { f.loads[l.ID] = l; return nil }
func (f *fakeLoadRepo) GetByID(id string) (*entity.TruckingLoad, error) {
	return f.loads[id], nil
}
func (f *fakeLoadRepo) GetForUpdate(id string) (*entity.TruckingLoad, error) {
	return f.loads[id], nil
}
func (f *fakeLoadRepo) Update(l *entity.TruckingLoad) error { f.loads[l.ID] = l; return nil }
func (f *fakeLoadRepo) NextSequence(requestID, direction string) (int, error) {
	max := 0
	for _, l := range f.loads {
		if l.RequestID == requestID && l.Direction == direction && l.Sequence > max {
			max = l.Sequence
		}
	}
	return max + 1, nil
}
func (f *fakeLoadRepo) ListByRequest(requestID string) ([]*entity.TruckingLoad, error) {
	var out []*entity.TruckingLoad
	for _, l := range f.loads {
		if l.RequestID == requestID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeItemRepo struct {
	items map[string]*entity.InventoryItem
}

func (f *fakeItemRepo) Create(it *entity.InventoryItem) error { f.items[it.ID] = it; return nil }
func (f *fakeItemRepo) Update(it *entity.InventoryItem) error { f.items[it.ID] = it; return nil }
func (f *fakeItemRepo) ListByRequest(requestID string) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	for _, it := range f.items {
		if it.RequestID == requestID {
			out = append(out, it)
		}
	}
	return out, nil
}
func (f *fakeItemRepo) ListInStorageByRequestAndRack(requestID, rackID string) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	for _, it := range f.items {
		if it.RequestID == requestID && it.RackID == rackID && it.State == entity.ItemStateInStorage {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
func (f *fakeItemRepo) CountInStorageByRequest(requestID string) (int, error) {
	count := 0
	for _, it := range f.items {
		if it.RequestID == requestID && it.State == entity.ItemStateInStorage {
			count++
		}
	}
	return count, nil
}
func (f *fakeItemRepo) SumInStorageByRack(rackID string) (int64, decimal.Decimal, error) {
	var units int64
	length := decimal.Zero
	for _, it := range f.items {
		if it.RackID == rackID && it.State == entity.ItemStateInStorage {
			units += it.Units
			length = length.Add(it.Length)
		}
	}
	return units, length, nil
}

type fakeRackRepo struct {
	racks map[string]*entity.Rack
}

func (f *fakeRackRepo) Create(r *entity.Rack) error                  { f.racks[r.ID] = r; return nil }
func (f *fakeRackRepo) GetByID(id string) (*entity.Rack, error)      { return f.racks[id], nil }
func (f *fakeRackRepo) List() ([]*entity.Rack, error)                { return nil, nil }
func (f *fakeRackRepo) GetForUpdate(id string) (*entity.Rack, error) { return f.racks[id], nil }
func (f *fakeRackRepo) GetManyForUpdate(ids []string) ([]*entity.Rack, error) {
	var out []*entity.Rack
	for _, id := range ids {
		if r, ok := f.racks[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeRackRepo) UpdateOccupancy(r *entity.Rack) error { f.racks[r.ID] = r; return nil }

type fakeRequestRepo struct {
	reqs map[string]*entity.StorageRequest
}

func (f *fakeRequestRepo) Create(r *entity.StorageRequest) error { f.reqs[r.ID] = r; return nil }
func (f *fakeRequestRepo) GetByID(id string) (*entity.StorageRequest, error) {
	return f.reqs[id], nil
}
func (f *fakeRequestRepo) GetForUpdate(id string) (*entity.StorageRequest, error) {
	return f.reqs[id], nil
}
func (f *fakeRequestRepo) Update(r *entity.StorageRequest) error { f.reqs[r.ID] = r; return nil }
func (f *fakeRequestRepo) ListByCompany(string, bool) ([]*entity.StorageRequest, error) {
	return nil, nil
}
func (f *fakeRequestRepo) ListAll(bool) ([]*entity.StorageRequest, error) { return nil, nil }

type fakeNotifRepo struct {
	entries []*entity.NotificationEntry
}

func (f *fakeNotifRepo) Create(e *entity.NotificationEntry) error {
	f.entries = append(f.entries, e)
	return nil
}
func (f *fakeNotifRepo) GetByID(string) (*entity.NotificationEntry, error) { return nil, nil }
func (f *fakeNotifRepo) ClaimBatch(int, int) ([]*entity.NotificationEntry, error) {
	return nil, nil
}
func (f *fakeNotifRepo) MarkDelivered(string, time.Time) error         { return nil }
func (f *fakeNotifRepo) RecordFailure(string, string, time.Time) error { return nil }
func (f *fakeNotifRepo) ListPermanentlyFailed(int) ([]*entity.NotificationEntry, error) {
	return nil, nil
}
func (f *fakeNotifRepo) ResetAttempts(string) error { return nil }

func (f *fakeNotifRepo) byType(t string) []*entity.NotificationEntry {
	var out []*entity.NotificationEntry
	for _, e := range f.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fakeTxRunner struct {
	loadRepo    *fakeLoadRepo
	itemRepo    *fakeItemRepo
	rackRepo    *fakeRackRepo
	requestRepo *fakeRequestRepo
	notifRepo   *fakeNotifRepo
}

func (f *fakeTxRunner) RunLoads(_ context.Context, fn func(
	repository.LoadRepository,
	repository.InventoryItemRepository,
	repository.RackRepository,
	repository.RequestRepository,
	repository.NotificationRepository,
) error) error {
	return fn(f.loadRepo, f.itemRepo, f.rackRepo, f.requestRepo, f.notifRepo)
}

type stubPDF struct{}

func (stubPDF) GenerateLoadManifest(context.Context, loads.ManifestData) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func meters(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newFixture() (*loads.TrackerUseCase, *fakeTxRunner) {
	runner := &fakeTxRunner{
		loadRepo:    &fakeLoadRepo{loads: map[string]*entity.TruckingLoad{}},
		itemRepo:    &fakeItemRepo{items: map[string]*entity.InventoryItem{}},
		rackRepo:    &fakeRackRepo{racks: map[string]*entity.Rack{}},
		requestRepo: &fakeRequestRepo{reqs: map[string]*entity.StorageRequest{}},
		notifRepo:   &fakeNotifRepo{},
	}
	uc := loads.NewTrackerUseCase(runner, runner.loadRepo, stubPDF{})
	return uc, runner
}

func approvedRequest(id string) *entity.StorageRequest {
	return &entity.StorageRequest{
		ID:              id,
		CompanyID:       "empresa-001",
		Reference:       "REF-001",
		State:           entity.RequestStateApproved,
		RequestedUnits:  150,
		RequestedLength: meters(1800),
		AssignedRackIDs: []string{"rack-a"},
		ContactEmail:    "cliente@patio.test",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Register
// ──────────────────────────────────────────────────────────────────────────────

// La secuencia es independiente por dirección y empieza en 1.
func TestRegister_SecuenciaPorDireccion(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")

	in := loads.RegisterLoadInput{
		RequestID:     "req-1",
		Direction:     entity.LoadDirectionInbound,
		RackID:        "rack-a",
		PlannedUnits:  100,
		PlannedLength: meters(1200),
		PlannedWeight: meters(40),
	}
	first, err := uc.Register(context.Background(), "op-001", in)
	require.NoError(t, err)
	second, err := uc.Register(context.Background(), "op-001", in)
	require.NoError(t, err)

	out := in
	out.Direction = entity.LoadDirectionOutbound
	salida, err := uc.Register(context.Background(), "op-001", out)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, 2, second.Sequence)
	assert.Equal(t, 1, salida.Sequence, "la secuencia de salida es independiente")
	assert.Equal(t, entity.LoadStateNew, first.State)
	assert.Equal(t, "empresa-001", first.CompanyID, "hereda el tenant de la solicitud")
}

// Solo solicitudes aprobadas reciben cargas.
func TestRegister_SolicitudNoAprobada(t *testing.T) {
	uc, runner := newFixture()
	req := approvedRequest("req-1")
	req.State = entity.RequestStatePending
	runner.requestRepo.reqs["req-1"] = req

	_, err := uc.Register(context.Background(), "op-001", loads.RegisterLoadInput{
		RequestID:    "req-1",
		Direction:    entity.LoadDirectionInbound,
		RackID:       "rack-a",
		PlannedUnits: 100,
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRegister_DireccionInvalida(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")

	_, err := uc.Register(context.Background(), "op-001", loads.RegisterLoadInput{
		RequestID:    "req-1",
		Direction:    "SIDEWAYS",
		RackID:       "rack-a",
		PlannedUnits: 100,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Advance
// ──────────────────────────────────────────────────────────────────────────────

func TestAdvance_FlujoCompleto(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")
	runner.loadRepo.loads["load-1"] = &entity.TruckingLoad{
		ID: "load-1", RequestID: "req-1", State: entity.LoadStateNew,
	}

	l, err := uc.Advance(context.Background(), "load-1", entity.LoadStateApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.LoadStateApproved, l.State)

	l, err = uc.Advance(context.Background(), "load-1", entity.LoadStateInTransit)
	require.NoError(t, err)
	assert.Equal(t, entity.LoadStateInTransit, l.State)

	// COMPLETED exige cifras reales: Advance lo rechaza.
	_, err = uc.Advance(context.Background(), "load-1", entity.LoadStateCompleted)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdvance_TransicionInvalida(t *testing.T) {
	uc, runner := newFixture()
	runner.loadRepo.loads["load-1"] = &entity.TruckingLoad{
		ID: "load-1", State: entity.LoadStateNew,
	}
	_, err := uc.Advance(context.Background(), "load-1", entity.LoadStateInTransit)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Complete
// ──────────────────────────────────────────────────────────────────────────────

// Entrada: el lote queda IN_STORAGE y la ocupación se corrige con la
// diferencia entre lo real y lo planificado (la aprobación ya reservó lo
// planificado).
func TestComplete_InboundReconciliaOcupacion(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")
	// La aprobación reservó 100 tubos / 1200 m.
	runner.rackRepo.racks["rack-a"] = &entity.Rack{
		ID: "rack-a", Code: "A-1",
		CapacityUnits: 200, OccupiedUnits: 100,
		CapacityLength: meters(2400), OccupiedLength: meters(1200),
	}
	runner.loadRepo.loads["load-1"] = &entity.TruckingLoad{
		ID: "load-1", RequestID: "req-1", CompanyID: "empresa-001",
		Direction: entity.LoadDirectionInbound, Sequence: 1,
		State: entity.LoadStateInTransit, RackID: "rack-a",
		PlannedUnits: 100, PlannedLength: meters(1200),
	}

	// Llegaron 90 tubos / 1080 m: 10 tubos menos de lo planificado.
	l, err := uc.Complete(context.Background(), "op-001", loads.CompleteLoadInput{
		LoadID: "load-1", Units: 90, Length: meters(1080), Weight: meters(36), Diameter: `9 5/8"`,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.LoadStateCompleted, l.State)
	assert.Equal(t, int64(90), l.CompletedUnits)
	require.NotNil(t, l.CompletedAt)

	// Ocupación corregida: 100 reservados - 10 no entregados = 90.
	rack := runner.rackRepo.racks["rack-a"]
	assert.Equal(t, int64(90), rack.OccupiedUnits)
	assert.True(t, meters(1080).Equal(rack.OccupiedLength), "largo ocupado corregido")

	// Lote almacenado con las cifras reales.
	items, err := runner.itemRepo.ListInStorageByRequestAndRack("req-1", "rack-a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(90), items[0].Units)
	assert.Equal(t, "rack-a", items[0].RackID)
	assert.Equal(t, "load-1", items[0].LoadID)

	// Una notificación de estado de carga.
	require.Len(t, runner.notifRepo.byType(entity.NotificationLoadStatus), 1)
	assert.Empty(t, runner.notifRepo.byType(entity.NotificationProjectComplete))
}

// Salida final: inventario recogido, ocupación liberada y solicitud COMPLETED
// con su notificación de proyecto completo.
func TestComplete_OutboundCompletaProyecto(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")
	runner.rackRepo.racks["rack-a"] = &entity.Rack{
		ID: "rack-a", Code: "A-1",
		CapacityUnits: 200, OccupiedUnits: 90,
		CapacityLength: meters(2400), OccupiedLength: meters(1080),
	}
	runner.itemRepo.items["item-1"] = &entity.InventoryItem{
		ID: "item-1", CompanyID: "empresa-001", RequestID: "req-1", LoadID: "in-1",
		State: entity.ItemStateInStorage, Units: 90, Length: meters(1080), RackID: "rack-a",
	}
	runner.loadRepo.loads["load-out"] = &entity.TruckingLoad{
		ID: "load-out", RequestID: "req-1", CompanyID: "empresa-001",
		Direction: entity.LoadDirectionOutbound, Sequence: 1,
		State: entity.LoadStateInTransit, RackID: "rack-a",
		PlannedUnits: 90, PlannedLength: meters(1080),
	}

	_, err := uc.Complete(context.Background(), "op-001", loads.CompleteLoadInput{
		LoadID: "load-out", Units: 90, Length: meters(1080),
	})
	require.NoError(t, err)

	// Ocupación liberada por completo.
	rack := runner.rackRepo.racks["rack-a"]
	assert.Equal(t, int64(0), rack.OccupiedUnits)
	assert.True(t, rack.OccupiedLength.IsZero())

	// Inventario recogido y solicitud completada.
	assert.Equal(t, entity.ItemStatePickedUp, runner.itemRepo.items["item-1"].State)
	assert.Equal(t, entity.RequestStateCompleted, runner.requestRepo.reqs["req-1"].State)

	require.Len(t, runner.notifRepo.byType(entity.NotificationProjectComplete), 1)
	require.Len(t, runner.notifRepo.byType(entity.NotificationLoadStatus), 1)
}

// Salida parcial: el último lote queda IN_STORAGE con el resto y la
// solicitud sigue APPROVED.
func TestComplete_OutboundParcial(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")
	runner.rackRepo.racks["rack-a"] = &entity.Rack{
		ID: "rack-a", Code: "A-1",
		CapacityUnits: 200, OccupiedUnits: 90,
		CapacityLength: meters(2400), OccupiedLength: meters(1080),
	}
	runner.itemRepo.items["item-1"] = &entity.InventoryItem{
		ID: "item-1", RequestID: "req-1", State: entity.ItemStateInStorage,
		Units: 90, Length: meters(1080), RackID: "rack-a",
	}
	runner.loadRepo.loads["load-out"] = &entity.TruckingLoad{
		ID: "load-out", RequestID: "req-1", CompanyID: "empresa-001",
		Direction: entity.LoadDirectionOutbound, Sequence: 1,
		State: entity.LoadStateInTransit, RackID: "rack-a",
		PlannedUnits: 30, PlannedLength: meters(360),
	}

	_, err := uc.Complete(context.Background(), "op-001", loads.CompleteLoadInput{
		LoadID: "load-out", Units: 30, Length: meters(360),
	})
	require.NoError(t, err)

	item := runner.itemRepo.items["item-1"]
	assert.Equal(t, entity.ItemStateInStorage, item.State, "el lote parcial sigue almacenado")
	assert.Equal(t, int64(60), item.Units)
	assert.Equal(t, entity.RequestStateApproved, runner.requestRepo.reqs["req-1"].State)
	assert.Empty(t, runner.notifRepo.byType(entity.NotificationProjectComplete))
}

// Con inventario en dos racks, la salida solo toca el rack de la carga:
// libera su ocupación y recoge sus lotes, sin tocar el otro rack aunque
// tenga inventario más antiguo de la misma solicitud.
func TestComplete_OutboundSoloTocaSuRack(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")
	runner.rackRepo.racks["rack-a"] = &entity.Rack{
		ID: "rack-a", Code: "A-1",
		CapacityUnits: 200, OccupiedUnits: 50,
		CapacityLength: meters(2400), OccupiedLength: meters(600),
	}
	runner.rackRepo.racks["rack-b"] = &entity.Rack{
		ID: "rack-b", Code: "B-1",
		CapacityUnits: 200, OccupiedUnits: 40,
		CapacityLength: meters(2400), OccupiedLength: meters(480),
	}
	// El lote de rack-a es más antiguo: no debe recogerse desde rack-b.
	runner.itemRepo.items["item-a"] = &entity.InventoryItem{
		ID: "item-a", RequestID: "req-1", State: entity.ItemStateInStorage,
		Units: 50, Length: meters(600), RackID: "rack-a",
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	runner.itemRepo.items["item-b"] = &entity.InventoryItem{
		ID: "item-b", RequestID: "req-1", State: entity.ItemStateInStorage,
		Units: 40, Length: meters(480), RackID: "rack-b",
		CreatedAt: time.Now().Add(-time.Hour),
	}
	runner.loadRepo.loads["load-out"] = &entity.TruckingLoad{
		ID: "load-out", RequestID: "req-1", CompanyID: "empresa-001",
		Direction: entity.LoadDirectionOutbound, Sequence: 1,
		State: entity.LoadStateInTransit, RackID: "rack-b",
		PlannedUnits: 40, PlannedLength: meters(480),
	}

	_, err := uc.Complete(context.Background(), "op-001", loads.CompleteLoadInput{
		LoadID: "load-out", Units: 40, Length: meters(480),
	})
	require.NoError(t, err)

	// rack-b liberado y su lote recogido.
	assert.Equal(t, int64(0), runner.rackRepo.racks["rack-b"].OccupiedUnits)
	assert.True(t, runner.rackRepo.racks["rack-b"].OccupiedLength.IsZero())
	assert.Equal(t, entity.ItemStatePickedUp, runner.itemRepo.items["item-b"].State)

	// rack-a intacto: ocupación y lote sin cambios.
	assert.Equal(t, int64(50), runner.rackRepo.racks["rack-a"].OccupiedUnits)
	assert.True(t, meters(600).Equal(runner.rackRepo.racks["rack-a"].OccupiedLength))
	assert.Equal(t, entity.ItemStateInStorage, runner.itemRepo.items["item-a"].State)
	assert.Equal(t, int64(50), runner.itemRepo.items["item-a"].Units)

	// Queda inventario almacenado: la solicitud sigue APPROVED.
	assert.Equal(t, entity.RequestStateApproved, runner.requestRepo.reqs["req-1"].State)
	assert.Empty(t, runner.notifRepo.byType(entity.NotificationProjectComplete))
}

// COMPLETED solo es alcanzable desde IN_TRANSIT.
func TestComplete_TransicionInvalida(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")
	runner.loadRepo.loads["load-1"] = &entity.TruckingLoad{
		ID: "load-1", RequestID: "req-1", State: entity.LoadStateNew,
	}

	_, err := uc.Complete(context.Background(), "op-001", loads.CompleteLoadInput{
		LoadID: "load-1", Units: 10, Length: meters(120),
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Manifest
// ──────────────────────────────────────────────────────────────────────────────

func TestManifest_GeneraPDF(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = approvedRequest("req-1")
	runner.loadRepo.loads["load-1"] = &entity.TruckingLoad{
		ID: "load-1", RequestID: "req-1", State: entity.LoadStateInTransit,
	}

	pdf, err := uc.Manifest(context.Background(), "load-1")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestManifest_CargaInexistente(t *testing.T) {
	uc, _ := newFixture()
	_, err := uc.Manifest(context.Background(), "load-fantasma")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
