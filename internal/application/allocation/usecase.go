package allocation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/capacity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// Actor identidad del llamador (extraída del JWT por el middleware).
type Actor struct {
	UserID    string
	CompanyID string
}

// ApproveInput entrada de la aprobación: racks elegidos por el operador.
type ApproveInput struct {
	RequestID      string
	RackIDs        []string
	RequiredUnits  int64
	RequiredLength decimal.Decimal
	Notes          string
}

// ApproveResult reparto final aplicado.
type ApproveResult struct {
	Status string
	Shares []capacity.Share
}

// CoordinatorUseCase ejecuta la transacción de aprobación/rechazo: valida
// autorización, verifica y muta la ocupación de racks, avanza el ciclo de
// vida de la solicitud, escribe auditoría y encola la notificación — como una
// sola unidad atómica. Cualquier fallo deja solicitud, racks y cola
// exactamente como antes de la llamada.
type CoordinatorUseCase struct {
	txRunner TxRunner
	authz    Authorizer
}

// NewCoordinatorUseCase construye el caso de uso.
func NewCoordinatorUseCase(txRunner TxRunner, authz Authorizer) *CoordinatorUseCase {
	return &CoordinatorUseCase{txRunner: txRunner, authz: authz}
}

// Approve aprueba una solicitud PENDING reservando capacidad en los racks
// indicados. Dos aprobaciones concurrentes sobre racks en común se
// serializan por bloqueo de fila: la segunda ve la ocupación ya confirmada
// y falla con ErrCapacityExceeded si el sobrante no alcanza.
func (uc *CoordinatorUseCase) Approve(ctx context.Context, actor Actor, in ApproveInput) (*ApproveResult, error) {
	// Autorización primero: sin efectos secundarios si el llamador no es operador.
	ok, err := uc.authz.IsOperator(actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("verificar operador: %w", err)
	}
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if in.RequestID == "" || len(in.RackIDs) == 0 || in.RequiredUnits <= 0 || in.RequiredLength.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var result *ApproveResult
	err = uc.txRunner.Run(ctx, func(
		requestRepo repository.RequestRepository,
		rackRepo repository.RackRepository,
		auditRepo repository.AuditRepository,
		notifRepo repository.NotificationRepository,
	) error {
		// Bloquea la solicitud: doble aprobación o carrera de dos operadores
		// sobre la misma solicitud se resuelve aquí de forma determinista.
		req, err := requestRepo.GetForUpdate(in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if !req.Resolvable() {
			return domain.ErrInvalidState
		}

		// Bloquea los racks (orden estable de ID) y valida todo antes de mutar.
		racks, err := rackRepo.GetManyForUpdate(in.RackIDs)
		if err != nil {
			return err
		}
		if len(racks) != len(in.RackIDs) {
			return domain.ErrNotFound
		}
		shares, err := capacity.PlanReservation(racks, in.RequiredUnits, in.RequiredLength)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.Rack, len(racks))
		for _, r := range racks {
			byID[r.ID] = r
		}
		if err := capacity.Apply(byID, shares); err != nil {
			return err
		}
		for _, s := range shares {
			if err := rackRepo.UpdateOccupancy(byID[s.RackID]); err != nil {
				return err
			}
		}

		now := time.Now()
		assigned := make([]string, 0, len(shares))
		for _, s := range shares {
			assigned = append(assigned, s.RackID)
		}
		req.State = entity.RequestStateApproved
		req.AssignedRackIDs = assigned
		req.ApprovedBy = actor.UserID
		req.ApprovedAt = &now
		req.ApprovalNotes = in.Notes
		req.UpdatedAt = now
		if err := requestRepo.Update(req); err != nil {
			return err
		}

		if err := auditRepo.Create(&entity.AuditLogEntry{
			ID:        uuid.New().String(),
			CompanyID: req.CompanyID,
			UserID:    actor.UserID,
			Action:    entity.AuditActionApprove,
			RequestID: req.ID,
			Detail:    in.Notes,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		// Exactamente una notificación por aprobación, en la misma transacción.
		if err := notifRepo.Create(approvedNotification(req, byID, shares, now)); err != nil {
			return err
		}

		result = &ApproveResult{Status: entity.RequestStateApproved, Shares: shares}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject rechaza una solicitud PENDING con motivo. Simétrico a Approve pero
// sin reserva de capacidad: nunca muta ningún rack.
func (uc *CoordinatorUseCase) Reject(ctx context.Context, actor Actor, requestID, reason string) error {
	ok, err := uc.authz.IsOperator(actor.UserID)
	if err != nil {
		return fmt.Errorf("verificar operador: %w", err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	if requestID == "" || strings.TrimSpace(reason) == "" {
		return domain.ErrInvalidInput
	}

	return uc.txRunner.Run(ctx, func(
		requestRepo repository.RequestRepository,
		_ repository.RackRepository,
		auditRepo repository.AuditRepository,
		notifRepo repository.NotificationRepository,
	) error {
		req, err := requestRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if !req.Resolvable() {
			return domain.ErrInvalidState
		}

		now := time.Now()
		req.State = entity.RequestStateRejected
		req.RejectionReason = reason
		req.UpdatedAt = now
		if err := requestRepo.Update(req); err != nil {
			return err
		}

		if err := auditRepo.Create(&entity.AuditLogEntry{
			ID:        uuid.New().String(),
			CompanyID: req.CompanyID,
			UserID:    actor.UserID,
			Action:    entity.AuditActionReject,
			RequestID: req.ID,
			Detail:    reason,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		return notifRepo.Create(rejectedNotification(req, reason, now))
	})
}

// approvedNotification arma la entrada "solicitud aprobada" con los campos
// que el canal necesita para renderizar (la plantilla es asunto del canal).
func approvedNotification(req *entity.StorageRequest, racks map[string]*entity.Rack, shares []capacity.Share, now time.Time) *entity.NotificationEntry {
	codes := make([]string, 0, len(shares))
	for _, s := range shares {
		codes = append(codes, racks[s.RackID].Code)
	}
	return &entity.NotificationEntry{
		ID:        uuid.New().String(),
		CompanyID: req.CompanyID,
		Type:      entity.NotificationRequestApproved,
		RequestID: req.ID,
		Payload: entity.NotificationPayload{
			Recipient: req.ContactEmail,
			Subject:   fmt.Sprintf("Solicitud %s aprobada", req.Reference),
			Fields: map[string]string{
				"reference": req.Reference,
				"units":     fmt.Sprintf("%d", req.RequestedUnits),
				"length_m":  req.RequestedLength.String(),
				"racks":     strings.Join(codes, ", "),
				"notes":     req.ApprovalNotes,
			},
		},
		CreatedAt: now,
	}
}

func rejectedNotification(req *entity.StorageRequest, reason string, now time.Time) *entity.NotificationEntry {
	return &entity.NotificationEntry{
		ID:        uuid.New().String(),
		CompanyID: req.CompanyID,
		Type:      entity.NotificationRequestRejected,
		RequestID: req.ID,
		Payload: entity.NotificationPayload{
			Recipient: req.ContactEmail,
			Subject:   fmt.Sprintf("Solicitud %s rechazada", req.Reference),
			Fields: map[string]string{
				"reference": req.Reference,
				"reason":    reason,
			},
		},
		CreatedAt: now,
	}
}
