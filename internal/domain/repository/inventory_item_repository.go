package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto para el inventario físico del patio.
type InventoryItemRepository interface {
	Create(item *entity.InventoryItem) error
	Update(item *entity.InventoryItem) error
	ListByRequest(requestID string) ([]*entity.InventoryItem, error)
	// ListInStorageByRequestAndRack devuelve los lotes IN_STORAGE de una
	// solicitud en un rack concreto: la recogida de una carga saliente solo
	// puede tocar inventario del rack del que físicamente sale.
	ListInStorageByRequestAndRack(requestID, rackID string) ([]*entity.InventoryItem, error)
	CountInStorageByRequest(requestID string) (int, error)
	// SumInStorageByRack suma tubos y metros IN_STORAGE de un rack; es la
	// fuente de verdad para el recálculo de ocupación (reconciliación).
	SumInStorageByRack(rackID string) (units int64, length decimal.Decimal, err error)
}
