package allocation_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacenaje-api/internal/application/allocation"
	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeRequestRepo struct {
	reqs    map[string]*entity.StorageRequest
	updates int
}

func (f *fakeRequestRepo) Create(req *entity.StorageRequest) error { f.reqs[req.ID] = req; return nil }
func (f *fakeRequestRepo) GetByID(id string) (*entity.StorageRequest, error) {
	return f.reqs[id], nil
}
func (f *fakeRequestRepo) GetForUpdate(id string) (*entity.StorageRequest, error) {
	return f.reqs[id], nil
}
func (f *fakeRequestRepo) Update(req *entity.StorageRequest) error {
	f.reqs[req.ID] = req
	f.updates++
	return nil
}
func (f *fakeRequestRepo) ListByCompany(string, bool) ([]*entity.StorageRequest, error) {
	return nil, nil
}
func (f *fakeRequestRepo) ListAll(bool) ([]*entity.StorageRequest, error) { return nil, nil }

type fakeRackRepo struct {
	racks   map[string]*entity.Rack
	updates int
}

func (f *fakeRackRepo) Create(r *entity.Rack) error             { f.racks[r.ID] = r; return nil }
func (f *fakeRackRepo) GetByID(id string) (*entity.Rack, error) { return f.racks[id], nil }
func (f *fakeRackRepo) List() ([]*entity.Rack, error)           { return nil, nil }
func (f *fakeRackRepo) GetForUpdate(id string) (*entity.Rack, error) {
	return f.racks[id], nil
}
func (f *fakeRackRepo) GetManyForUpdate(ids []string) ([]*entity.Rack, error) {
	// Como el repo real: bloquea en orden de ID pero devuelve en orden pedido.
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	out := make([]*entity.Rack, 0, len(ids))
	for _, id := range ids {
		if r, ok := f.racks[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeRackRepo) UpdateOccupancy(r *entity.Rack) error {
	f.racks[r.ID] = r
	f.updates++
	return nil
}

type fakeAuditRepo struct {
	entries []*entity.AuditLogEntry
}

func (f *fakeAuditRepo) Create(e *entity.AuditLogEntry) error { f.entries = append(f.entries, e); return nil }
func (f *fakeAuditRepo) ListByRequest(string) ([]*entity.AuditLogEntry, error) {
	return f.entries, nil
}

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

// fakeTxRunner ejecuta el callback directamente sobre los fakes compartidos.
type fakeTxRunner struct {
	requestRepo *fakeRequestRepo
	rackRepo    *fakeRackRepo
	auditRepo   *fakeAuditRepo
	notifRepo   *fakeNotifRepo
}

func (f *fakeTxRunner) Run(_ context.Context, fn func(
	repository.RequestRepository,
	repository.RackRepository,
	repository.AuditRepository,
	repository.NotificationRepository,
) error) error {
	return fn(f.requestRepo, f.rackRepo, f.auditRepo, f.notifRepo)
}

type fakeAuthorizer struct {
	operators map[string]bool
}

func (f *fakeAuthorizer) IsOperator(userID string) (bool, error) {
	return f.operators[userID], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	operatorID = "op-001"
	clientID   = "cli-001"
	companyID  = "empresa-001"
)

func meters(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func pendingRequest(id, ref string, units int64, length int64) *entity.StorageRequest {
	return &entity.StorageRequest{
		ID:              id,
		CompanyID:       companyID,
		Reference:       ref,
		State:           entity.RequestStatePending,
		RequestedUnits:  units,
		RequestedLength: meters(length),
		ContactEmail:    "cliente@patio.test",
	}
}

func rack(id, code string, capUnits, occUnits int64, capLen, occLen int64) *entity.Rack {
	return &entity.Rack{
		ID:             id,
		Code:           code,
		CapacityUnits:  capUnits,
		OccupiedUnits:  occUnits,
		CapacityLength: meters(capLen),
		OccupiedLength: meters(occLen),
	}
}

func newFixture() (*allocation.CoordinatorUseCase, *fakeTxRunner) {
	runner := &fakeTxRunner{
		requestRepo: &fakeRequestRepo{reqs: map[string]*entity.StorageRequest{}},
		rackRepo:    &fakeRackRepo{racks: map[string]*entity.Rack{}},
		auditRepo:   &fakeAuditRepo{},
		notifRepo:   &fakeNotifRepo{},
	}
	authz := &fakeAuthorizer{operators: map[string]bool{operatorID: true}}
	return allocation.NewCoordinatorUseCase(runner, authz), runner
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Approve
// ──────────────────────────────────────────────────────────────────────────────

// Aprobación feliz: 150 tubos repartidos entre dos racks en el orden elegido
// por el operador, con exactamente una notificación y un registro de auditoría.
func TestApprove_RepartoEntreDosRacks(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = pendingRequest("req-1", "REF-001", 150, 1800)
	runner.rackRepo.racks["rack-a"] = rack("rack-a", "A-1", 100, 0, 1200, 0)
	runner.rackRepo.racks["rack-b"] = rack("rack-b", "A-2", 100, 50, 1200, 600)

	result, err := uc.Approve(context.Background(), allocation.Actor{UserID: operatorID, CompanyID: companyID}, allocation.ApproveInput{
		RequestID:      "req-1",
		RackIDs:        []string{"rack-a", "rack-b"},
		RequiredUnits:  150,
		RequiredLength: meters(1800),
		Notes:          "bloque norte",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, entity.RequestStateApproved, result.Status)
	require.Len(t, result.Shares, 2, "el reparto debe usar ambos racks")
	assert.Equal(t, int64(100), result.Shares[0].Units, "el primer rack se llena primero")
	assert.Equal(t, int64(50), result.Shares[1].Units, "el resto va al segundo rack")

	// Ocupación confirmada en ambos racks.
	assert.Equal(t, int64(100), runner.rackRepo.racks["rack-a"].OccupiedUnits)
	assert.Equal(t, int64(100), runner.rackRepo.racks["rack-b"].OccupiedUnits)

	// Estado y metadatos de la solicitud.
	req := runner.requestRepo.reqs["req-1"]
	assert.Equal(t, entity.RequestStateApproved, req.State)
	assert.Equal(t, []string{"rack-a", "rack-b"}, req.AssignedRackIDs)
	assert.Equal(t, operatorID, req.ApprovedBy)
	require.NotNil(t, req.ApprovedAt)
	assert.Equal(t, "bloque norte", req.ApprovalNotes)

	// Exactamente una notificación y un registro de auditoría.
	require.Len(t, runner.notifRepo.entries, 1)
	notif := runner.notifRepo.entries[0]
	assert.Equal(t, entity.NotificationRequestApproved, notif.Type)
	assert.Equal(t, "cliente@patio.test", notif.Payload.Recipient)
	assert.Equal(t, "A-1, A-2", notif.Payload.Fields["racks"])

	require.Len(t, runner.auditRepo.entries, 1)
	assert.Equal(t, entity.AuditActionApprove, runner.auditRepo.entries[0].Action)
}

// Un llamador sin rol de operador no produce ningún efecto secundario.
func TestApprove_NoOperador_SinEfectos(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = pendingRequest("req-1", "REF-001", 50, 600)
	runner.rackRepo.racks["rack-a"] = rack("rack-a", "A-1", 100, 0, 1200, 0)

	_, err := uc.Approve(context.Background(), allocation.Actor{UserID: clientID, CompanyID: companyID}, allocation.ApproveInput{
		RequestID:      "req-1",
		RackIDs:        []string{"rack-a"},
		RequiredUnits:  50,
		RequiredLength: meters(600),
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Equal(t, entity.RequestStatePending, runner.requestRepo.reqs["req-1"].State)
	assert.Equal(t, int64(0), runner.rackRepo.racks["rack-a"].OccupiedUnits)
	assert.Empty(t, runner.notifRepo.entries, "sin autorización no debe encolarse nada")
	assert.Empty(t, runner.auditRepo.entries)
}

// Reintentar sobre una solicitud ya resuelta falla sin tocar nada.
func TestApprove_SolicitudYaResuelta(t *testing.T) {
	uc, runner := newFixture()
	req := pendingRequest("req-1", "REF-001", 50, 600)
	req.State = entity.RequestStateApproved
	runner.requestRepo.reqs["req-1"] = req
	runner.rackRepo.racks["rack-a"] = rack("rack-a", "A-1", 100, 0, 1200, 0)

	_, err := uc.Approve(context.Background(), allocation.Actor{UserID: operatorID}, allocation.ApproveInput{
		RequestID:      "req-1",
		RackIDs:        []string{"rack-a"},
		RequiredUnits:  50,
		RequiredLength: meters(600),
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Empty(t, runner.notifRepo.entries)
	assert.Zero(t, runner.rackRepo.updates)
}

// Capacidad insuficiente: todo-o-nada, ningún rack queda mutado.
func TestApprove_CapacidadInsuficiente_SinMutacion(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = pendingRequest("req-1", "REF-001", 50, 600)
	runner.rackRepo.racks["rack-a"] = rack("rack-a", "A-1", 100, 90, 1200, 1080)

	_, err := uc.Approve(context.Background(), allocation.Actor{UserID: operatorID}, allocation.ApproveInput{
		RequestID:      "req-1",
		RackIDs:        []string{"rack-a"},
		RequiredUnits:  50,
		RequiredLength: meters(600),
	})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	assert.Equal(t, int64(90), runner.rackRepo.racks["rack-a"].OccupiedUnits, "la ocupación no debe cambiar")
	assert.Equal(t, entity.RequestStatePending, runner.requestRepo.reqs["req-1"].State)
	assert.Empty(t, runner.notifRepo.entries)
	assert.Zero(t, runner.requestRepo.updates)
}

// Rack inexistente en la selección del operador.
func TestApprove_RackInexistente(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = pendingRequest("req-1", "REF-001", 50, 600)

	_, err := uc.Approve(context.Background(), allocation.Actor{UserID: operatorID}, allocation.ApproveInput{
		RequestID:      "req-1",
		RackIDs:        []string{"rack-fantasma"},
		RequiredUnits:  50,
		RequiredLength: meters(600),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Reject
// ──────────────────────────────────────────────────────────────────────────────

// Rechazo feliz: estado, motivo, auditoría y una notificación; los racks no
// se tocan jamás en un rechazo.
func TestReject_NoTocaRacks(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = pendingRequest("req-1", "REF-001", 50, 600)
	runner.rackRepo.racks["rack-a"] = rack("rack-a", "A-1", 100, 10, 1200, 120)

	err := uc.Reject(context.Background(), allocation.Actor{UserID: operatorID}, "req-1", "sin espacio este mes")
	require.NoError(t, err)

	req := runner.requestRepo.reqs["req-1"]
	assert.Equal(t, entity.RequestStateRejected, req.State)
	assert.Equal(t, "sin espacio este mes", req.RejectionReason)

	assert.Zero(t, runner.rackRepo.updates, "un rechazo nunca muta racks")
	require.Len(t, runner.notifRepo.entries, 1)
	assert.Equal(t, entity.NotificationRequestRejected, runner.notifRepo.entries[0].Type)
	assert.Equal(t, "sin espacio este mes", runner.notifRepo.entries[0].Payload.Fields["reason"])
	require.Len(t, runner.auditRepo.entries, 1)
	assert.Equal(t, entity.AuditActionReject, runner.auditRepo.entries[0].Action)
}

// El motivo es obligatorio.
func TestReject_MotivoVacio(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = pendingRequest("req-1", "REF-001", 50, 600)

	err := uc.Reject(context.Background(), allocation.Actor{UserID: operatorID}, "req-1", "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.RequestStatePending, runner.requestRepo.reqs["req-1"].State)
}

// Rechazo sin rol de operador.
func TestReject_NoOperador(t *testing.T) {
	uc, runner := newFixture()
	runner.requestRepo.reqs["req-1"] = pendingRequest("req-1", "REF-001", 50, 600)

	err := uc.Reject(context.Background(), allocation.Actor{UserID: clientID}, "req-1", "motivo")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, runner.notifRepo.entries)
}
