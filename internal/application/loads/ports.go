package loads

import (
	"context"

	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del seguimiento de cargas. La finalización de una carga muta
// inventario, ocupación de rack, estado de la solicitud y cola de
// notificaciones como una sola unidad.
type TxRunner interface {
	RunLoads(ctx context.Context, fn func(
		loadRepo repository.LoadRepository,
		itemRepo repository.InventoryItemRepository,
		rackRepo repository.RackRepository,
		requestRepo repository.RequestRepository,
		notifRepo repository.NotificationRepository,
	) error) error
}

// ManifestData todo lo que necesita el manifiesto de carga impreso.
type ManifestData struct {
	Request *entity.StorageRequest
	Load    *entity.TruckingLoad
	Items   []*entity.InventoryItem
}

// ManifestPDFGenerator genera el manifiesto de carga en PDF.
type ManifestPDFGenerator interface {
	GenerateLoadManifest(ctx context.Context, data ManifestData) ([]byte, error)
}
