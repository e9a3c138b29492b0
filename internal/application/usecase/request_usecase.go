package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// RequestUseCase operaciones de solicitudes fuera del ciclo de aprobación:
// creación en borrador, envío a revisión, listados y archivado.
type RequestUseCase struct {
	requestRepo repository.RequestRepository
	auditRepo   repository.AuditRepository
}

// NewRequestUseCase construye el caso de uso.
func NewRequestUseCase(requestRepo repository.RequestRepository, auditRepo repository.AuditRepository) *RequestUseCase {
	return &RequestUseCase{requestRepo: requestRepo, auditRepo: auditRepo}
}

// CreateInput alta de una solicitud de almacenaje.
type CreateInput struct {
	CompanyID       string
	Reference       string
	RequestedUnits  int64
	RequestedLength decimal.Decimal
	ContactEmail    string
}

// Create registra la solicitud en DRAFT a nombre de la empresa del cliente.
func (uc *RequestUseCase) Create(in CreateInput) (*entity.StorageRequest, error) {
	if in.CompanyID == "" || in.Reference == "" || in.RequestedUnits <= 0 || in.ContactEmail == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	req := &entity.StorageRequest{
		ID:              uuid.New().String(),
		CompanyID:       in.CompanyID,
		Reference:       in.Reference,
		State:           entity.RequestStateDraft,
		RequestedUnits:  in.RequestedUnits,
		RequestedLength: in.RequestedLength,
		ContactEmail:    in.ContactEmail,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.requestRepo.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Submit pasa la solicitud de DRAFT a PENDING (queda a la espera del operador).
func (uc *RequestUseCase) Submit(requestID, companyID string) (*entity.StorageRequest, error) {
	req, err := uc.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if !req.Submittable() {
		return nil, domain.ErrInvalidState
	}
	req.State = entity.RequestStatePending
	req.UpdatedAt = time.Now()
	if err := uc.requestRepo.Update(req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetByID devuelve una solicitud visible para el tenant (los operadores ven todas).
func (uc *RequestUseCase) GetByID(requestID, companyID string, operator bool) (*entity.StorageRequest, error) {
	req, err := uc.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if !operator && req.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

// List devuelve las solicitudes del tenant; un operador ve las de todos.
func (uc *RequestUseCase) List(companyID string, operator, includeArchived bool) ([]*entity.StorageRequest, error) {
	if operator {
		return uc.requestRepo.ListAll(includeArchived)
	}
	return uc.requestRepo.ListByCompany(companyID, includeArchived)
}

// Archive marca una solicitud resuelta como archivada (nunca se borra) y
// deja rastro en auditoría.
func (uc *RequestUseCase) Archive(requestID, userID string) error {
	req, err := uc.requestRepo.GetByID(requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return domain.ErrNotFound
	}
	if !req.Archivable() {
		return domain.ErrInvalidState
	}
	req.Archived = true
	req.UpdatedAt = time.Now()
	if err := uc.requestRepo.Update(req); err != nil {
		return err
	}
	return uc.auditRepo.Create(&entity.AuditLogEntry{
		ID:        uuid.New().String(),
		CompanyID: req.CompanyID,
		UserID:    userID,
		Action:    entity.AuditActionArchive,
		RequestID: req.ID,
		CreatedAt: time.Now(),
	})
}
