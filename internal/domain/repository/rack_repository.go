package repository

import "github.com/jhoicas/Almacenaje-api/internal/domain/entity"

// RackRepository define el puerto para racks del patio. La ocupación solo se
// muta dentro de la transacción de aprobación, por la reconciliación de
// cargas o por el recálculo explícito; nunca con escrituras directas ad hoc.
type RackRepository interface {
	Create(rack *entity.Rack) error
	GetByID(id string) (*entity.Rack, error)
	List() ([]*entity.Rack, error)
	// GetManyForUpdate bloquea las filas de los racks indicados en orden
	// estable de ID (evita interbloqueos entre aprobaciones concurrentes) y
	// los devuelve en el orden pedido por el llamador.
	GetManyForUpdate(ids []string) ([]*entity.Rack, error)
	// GetForUpdate bloquea un único rack (reconciliación de cargas).
	GetForUpdate(id string) (*entity.Rack, error)
	UpdateOccupancy(rack *entity.Rack) error
}
