package loads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/capacity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// RegisterLoadInput datos de una carga planificada.
type RegisterLoadInput struct {
	RequestID     string
	Direction     string
	RackID        string
	PlannedUnits  int64
	PlannedLength decimal.Decimal
	PlannedWeight decimal.Decimal
}

// CompleteLoadInput cifras reales del conteo físico al cerrar la carga.
type CompleteLoadInput struct {
	LoadID   string
	Units    int64
	Length   decimal.Decimal
	Weight   decimal.Decimal
	Diameter string
}

// TrackerUseCase sigue cada carga de camión por su propio ciclo de vida y, al
// completarse, reconcilia inventario y ocupación de racks con las cifras
// reales (lo entregado puede diferir de lo reservado en la aprobación).
type TrackerUseCase struct {
	txRunner TxRunner
	loadRepo repository.LoadRepository
	pdfGen   ManifestPDFGenerator
}

// NewTrackerUseCase construye el caso de uso.
func NewTrackerUseCase(txRunner TxRunner, loadRepo repository.LoadRepository, pdfGen ManifestPDFGenerator) *TrackerUseCase {
	return &TrackerUseCase{txRunner: txRunner, loadRepo: loadRepo, pdfGen: pdfGen}
}

// Register crea una carga NEW con el siguiente número de secuencia por
// (solicitud, dirección). La fila de la solicitud se bloquea para que dos
// registros concurrentes no obtengan la misma secuencia; el constraint único
// respalda la garantía.
func (uc *TrackerUseCase) Register(ctx context.Context, userID string, in RegisterLoadInput) (*entity.TruckingLoad, error) {
	if in.RequestID == "" || in.RackID == "" || in.PlannedUnits <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Direction != entity.LoadDirectionInbound && in.Direction != entity.LoadDirectionOutbound {
		return nil, domain.ErrInvalidInput
	}

	var created *entity.TruckingLoad
	err := uc.txRunner.RunLoads(ctx, func(
		loadRepo repository.LoadRepository,
		_ repository.InventoryItemRepository,
		_ repository.RackRepository,
		requestRepo repository.RequestRepository,
		_ repository.NotificationRepository,
	) error {
		req, err := requestRepo.GetForUpdate(in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.State != entity.RequestStateApproved {
			return domain.ErrInvalidState
		}

		seq, err := loadRepo.NextSequence(in.RequestID, in.Direction)
		if err != nil {
			return err
		}
		now := time.Now()
		load := &entity.TruckingLoad{
			ID:            uuid.New().String(),
			RequestID:     in.RequestID,
			CompanyID:     req.CompanyID,
			Direction:     in.Direction,
			Sequence:      seq,
			State:         entity.LoadStateNew,
			RackID:        in.RackID,
			PlannedUnits:  in.PlannedUnits,
			PlannedLength: in.PlannedLength,
			PlannedWeight: in.PlannedWeight,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := loadRepo.Create(load); err != nil {
			return err
		}
		created = load
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Advance aplica una transición simple de estado (APPROVED, IN_TRANSIT,
// CANCELLED). COMPLETED pasa por Complete, que exige las cifras reales.
func (uc *TrackerUseCase) Advance(ctx context.Context, loadID, newState string) (*entity.TruckingLoad, error) {
	if newState == entity.LoadStateCompleted {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.TruckingLoad
	err := uc.txRunner.RunLoads(ctx, func(
		loadRepo repository.LoadRepository,
		_ repository.InventoryItemRepository,
		_ repository.RackRepository,
		_ repository.RequestRepository,
		_ repository.NotificationRepository,
	) error {
		load, err := loadRepo.GetForUpdate(loadID)
		if err != nil {
			return err
		}
		if load == nil {
			return domain.ErrNotFound
		}
		if !load.CanTransition(newState) {
			return domain.ErrInvalidState
		}
		load.State = newState
		load.UpdatedAt = time.Now()
		if err := loadRepo.Update(load); err != nil {
			return err
		}
		updated = load
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete cierra una carga IN_TRANSIT con el conteo físico real.
//
// INBOUND: crea el lote IN_STORAGE en el rack, corrige la ocupación por la
// diferencia entre lo real y lo planificado (la reserva de la aprobación ya
// contó lo planificado) y encola una notificación de estado de carga.
//
// OUTBOUND: libera ocupación por lo recogido, marca inventario PICKED_UP y,
// si no queda inventario IN_STORAGE de la solicitud, la avanza a COMPLETED y
// encola la notificación de proyecto completo.
func (uc *TrackerUseCase) Complete(ctx context.Context, userID string, in CompleteLoadInput) (*entity.TruckingLoad, error) {
	if in.LoadID == "" || in.Units <= 0 || in.Length.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var completed *entity.TruckingLoad
	err := uc.txRunner.RunLoads(ctx, func(
		loadRepo repository.LoadRepository,
		itemRepo repository.InventoryItemRepository,
		rackRepo repository.RackRepository,
		requestRepo repository.RequestRepository,
		notifRepo repository.NotificationRepository,
	) error {
		load, err := loadRepo.GetForUpdate(in.LoadID)
		if err != nil {
			return err
		}
		if load == nil {
			return domain.ErrNotFound
		}
		if !load.CanTransition(entity.LoadStateCompleted) {
			return domain.ErrInvalidState
		}
		req, err := requestRepo.GetForUpdate(load.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}

		now := time.Now()
		load.State = entity.LoadStateCompleted
		load.CompletedUnits = in.Units
		load.CompletedLength = in.Length
		load.CompletedWeight = in.Weight
		load.CompletedAt = &now
		load.UpdatedAt = now
		if err := loadRepo.Update(load); err != nil {
			return err
		}

		switch load.Direction {
		case entity.LoadDirectionInbound:
			if err := uc.completeInbound(loadRepo, itemRepo, rackRepo, load, in, now); err != nil {
				return err
			}
		case entity.LoadDirectionOutbound:
			done, err := uc.completeOutbound(itemRepo, rackRepo, load, in, now)
			if err != nil {
				return err
			}
			if done {
				req.State = entity.RequestStateCompleted
				req.UpdatedAt = now
				if err := requestRepo.Update(req); err != nil {
					return err
				}
				if err := notifRepo.Create(projectCompleteNotification(req, now)); err != nil {
					return err
				}
			}
		}

		if err := notifRepo.Create(loadStatusNotification(req, load, now)); err != nil {
			return err
		}
		completed = load
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// completeInbound almacena el lote entregado y corrige la ocupación del rack
// con la diferencia real-menos-planificado.
func (uc *TrackerUseCase) completeInbound(
	_ repository.LoadRepository,
	itemRepo repository.InventoryItemRepository,
	rackRepo repository.RackRepository,
	load *entity.TruckingLoad,
	in CompleteLoadInput,
	now time.Time,
) error {
	rack, err := rackRepo.GetForUpdate(load.RackID)
	if err != nil {
		return err
	}
	if rack == nil {
		return domain.ErrNotFound
	}

	deltaUnits := in.Units - load.PlannedUnits
	deltaLength := in.Length.Sub(load.PlannedLength)
	rack.OccupiedUnits += deltaUnits
	rack.OccupiedLength = rack.OccupiedLength.Add(deltaLength)
	if rack.OccupiedUnits < 0 {
		rack.OccupiedUnits = 0
	}
	if rack.OccupiedLength.IsNegative() {
		rack.OccupiedLength = decimal.Zero
	}
	if !rack.Consistent() {
		return domain.ErrCapacityExceeded
	}
	if err := rackRepo.UpdateOccupancy(rack); err != nil {
		return err
	}

	return itemRepo.Create(&entity.InventoryItem{
		ID:        uuid.New().String(),
		CompanyID: load.CompanyID,
		RequestID: load.RequestID,
		LoadID:    load.ID,
		State:     entity.ItemStateInStorage,
		Units:     in.Units,
		Length:    in.Length,
		Weight:    in.Weight,
		Diameter:  in.Diameter,
		RackID:    load.RackID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// completeOutbound marca lotes PICKED_UP hasta cubrir lo recogido (el último
// lote puede quedar parcial y sigue IN_STORAGE con el resto), libera
// ocupación y devuelve true si la solicitud quedó sin inventario almacenado.
// Solo toca inventario del rack de la carga: liberar ocupación de un rack
// recogiendo lotes de otro desincronizaría ambos libros con el patio físico.
func (uc *TrackerUseCase) completeOutbound(
	itemRepo repository.InventoryItemRepository,
	rackRepo repository.RackRepository,
	load *entity.TruckingLoad,
	in CompleteLoadInput,
	now time.Time,
) (bool, error) {
	rack, err := rackRepo.GetForUpdate(load.RackID)
	if err != nil {
		return false, err
	}
	if rack == nil {
		return false, domain.ErrNotFound
	}
	capacity.Release(rack, in.Units, in.Length)
	if err := rackRepo.UpdateOccupancy(rack); err != nil {
		return false, err
	}

	items, err := itemRepo.ListInStorageByRequestAndRack(load.RequestID, load.RackID)
	if err != nil {
		return false, err
	}
	remaining := in.Units
	remainingLen := in.Length
	for _, item := range items {
		if remaining <= 0 {
			break
		}
		if item.Units <= remaining {
			remaining -= item.Units
			remainingLen = remainingLen.Sub(item.Length)
			item.State = entity.ItemStatePickedUp
			item.UpdatedAt = now
		} else {
			item.Units -= remaining
			item.Length = item.Length.Sub(remainingLen)
			if item.Length.IsNegative() {
				item.Length = decimal.Zero
			}
			item.UpdatedAt = now
			remaining = 0
		}
		if err := itemRepo.Update(item); err != nil {
			return false, err
		}
	}

	count, err := itemRepo.CountInStorageByRequest(load.RequestID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// ListByRequest devuelve las cargas de una solicitud.
func (uc *TrackerUseCase) ListByRequest(requestID string) ([]*entity.TruckingLoad, error) {
	return uc.loadRepo.ListByRequest(requestID)
}

// Manifest genera el manifiesto PDF de una carga: cifras planificadas y
// reales más los lotes de inventario que transportó.
func (uc *TrackerUseCase) Manifest(ctx context.Context, loadID string) ([]byte, error) {
	var data ManifestData
	err := uc.txRunner.RunLoads(ctx, func(
		loadRepo repository.LoadRepository,
		itemRepo repository.InventoryItemRepository,
		_ repository.RackRepository,
		requestRepo repository.RequestRepository,
		_ repository.NotificationRepository,
	) error {
		load, err := loadRepo.GetByID(loadID)
		if err != nil {
			return err
		}
		if load == nil {
			return domain.ErrNotFound
		}
		req, err := requestRepo.GetByID(load.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		items, err := itemRepo.ListByRequest(load.RequestID)
		if err != nil {
			return err
		}
		data.Load = load
		data.Request = req
		for _, item := range items {
			if item.LoadID == load.ID {
				data.Items = append(data.Items, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.pdfGen.GenerateLoadManifest(ctx, data)
}

// GetByID devuelve una carga por su identificador.
func (uc *TrackerUseCase) GetByID(loadID string) (*entity.TruckingLoad, error) {
	load, err := uc.loadRepo.GetByID(loadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.ErrNotFound
	}
	return load, nil
}

func loadStatusNotification(req *entity.StorageRequest, load *entity.TruckingLoad, now time.Time) *entity.NotificationEntry {
	return &entity.NotificationEntry{
		ID:        uuid.New().String(),
		CompanyID: load.CompanyID,
		Type:      entity.NotificationLoadStatus,
		RequestID: load.RequestID,
		Payload: entity.NotificationPayload{
			Recipient: req.ContactEmail,
			Subject:   fmt.Sprintf("Carga %s #%d de %s completada", load.Direction, load.Sequence, req.Reference),
			Fields: map[string]string{
				"reference": req.Reference,
				"direction": load.Direction,
				"sequence":  fmt.Sprintf("%d", load.Sequence),
				"units":     fmt.Sprintf("%d", load.CompletedUnits),
				"length_m":  load.CompletedLength.String(),
				"weight_t":  load.CompletedWeight.String(),
			},
		},
		CreatedAt: now,
	}
}

func projectCompleteNotification(req *entity.StorageRequest, now time.Time) *entity.NotificationEntry {
	return &entity.NotificationEntry{
		ID:        uuid.New().String(),
		CompanyID: req.CompanyID,
		Type:      entity.NotificationProjectComplete,
		RequestID: req.ID,
		Payload: entity.NotificationPayload{
			Recipient: req.ContactEmail,
			Subject:   fmt.Sprintf("Proyecto %s completado: patio sin inventario", req.Reference),
			Fields: map[string]string{
				"reference": req.Reference,
			},
		},
		CreatedAt: now,
	}
}
