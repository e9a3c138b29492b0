package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// RackTxRunner abre la transacción de reconciliación: el recálculo de
// ocupación y su rastro de auditoría confirman o se descartan juntos.
type RackTxRunner interface {
	RunRacks(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		rackRepo repository.RackRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// RackUseCase administración de racks y reconciliación de ocupación.
type RackUseCase struct {
	rackRepo repository.RackRepository
	txRunner RackTxRunner
}

// NewRackUseCase construye el caso de uso.
func NewRackUseCase(rackRepo repository.RackRepository, txRunner RackTxRunner) *RackUseCase {
	return &RackUseCase{rackRepo: rackRepo, txRunner: txRunner}
}

// CreateRackInput alta de rack.
type CreateRackInput struct {
	Code           string
	CompanyID      string
	CapacityUnits  int64
	CapacityLength decimal.Decimal
}

// Create registra un rack. Capacidad cero es válida: "sin aprovisionar".
func (uc *RackUseCase) Create(in CreateRackInput) (*entity.Rack, error) {
	if in.Code == "" || in.CapacityUnits < 0 || in.CapacityLength.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	rack := &entity.Rack{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		Code:           in.Code,
		CapacityUnits:  in.CapacityUnits,
		CapacityLength: in.CapacityLength,
		OccupiedLength: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.rackRepo.Create(rack); err != nil {
		return nil, err
	}
	return rack, nil
}

// List devuelve todos los racks del patio con su ocupación actual.
func (uc *RackUseCase) List() ([]*entity.Rack, error) {
	return uc.rackRepo.List()
}

// Reconcile recalcula la ocupación del rack desde el inventario IN_STORAGE
// (la fuente de verdad física). Es la vía de recuperación operativa: la
// ocupación no admite escrituras directas fuera de reserva, liberación y
// este recálculo.
func (uc *RackUseCase) Reconcile(ctx context.Context, rackID, userID string) (*entity.Rack, error) {
	var reconciled *entity.Rack
	err := uc.txRunner.RunRacks(ctx, func(
		itemRepo repository.InventoryItemRepository,
		rackRepo repository.RackRepository,
		auditRepo repository.AuditRepository,
	) error {
		rack, err := rackRepo.GetForUpdate(rackID)
		if err != nil {
			return err
		}
		if rack == nil {
			return domain.ErrNotFound
		}
		units, length, err := itemRepo.SumInStorageByRack(rackID)
		if err != nil {
			return err
		}
		rack.OccupiedUnits = units
		rack.OccupiedLength = length
		rack.UpdatedAt = time.Now()
		if err := rackRepo.UpdateOccupancy(rack); err != nil {
			return err
		}
		if err := auditRepo.Create(&entity.AuditLogEntry{
			ID:        uuid.New().String(),
			CompanyID: rack.CompanyID,
			UserID:    userID,
			Action:    entity.AuditActionReconcile,
			Detail:    "rack " + rackID,
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		reconciled = rack
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reconciled, nil
}
