package repository

import "github.com/jhoicas/Almacenaje-api/internal/domain/entity"

// LoadRepository define el puerto para cargas de camión.
type LoadRepository interface {
	// Create persiste la carga; la unicidad de (request, direction, sequence)
	// la garantiza un constraint único y se reporta como ErrDuplicate.
	Create(load *entity.TruckingLoad) error
	GetByID(id string) (*entity.TruckingLoad, error)
	GetForUpdate(id string) (*entity.TruckingLoad, error)
	Update(load *entity.TruckingLoad) error
	// NextSequence devuelve el siguiente número de secuencia por
	// (solicitud, dirección), iniciando en 1.
	NextSequence(requestID, direction string) (int, error)
	ListByRequest(requestID string) ([]*entity.TruckingLoad, error)
}
