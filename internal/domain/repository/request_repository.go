package repository

import "github.com/jhoicas/Almacenaje-api/internal/domain/entity"

// RequestRepository define el puerto para solicitudes de almacenaje.
// Las solicitudes nunca se borran: se archivan vía Update.
type RequestRepository interface {
	Create(req *entity.StorageRequest) error
	GetByID(id string) (*entity.StorageRequest, error)
	// GetForUpdate bloquea la fila de la solicitud (SELECT FOR UPDATE) para
	// serializar aprobaciones/rechazos concurrentes sobre la misma solicitud.
	GetForUpdate(id string) (*entity.StorageRequest, error)
	Update(req *entity.StorageRequest) error
	ListByCompany(companyID string, includeArchived bool) ([]*entity.StorageRequest, error)
	ListAll(includeArchived bool) ([]*entity.StorageRequest, error)
}
