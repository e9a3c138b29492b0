package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `
	id, company_id, request_id, load_id, state, units, length, weight,
	diameter, rack_id, created_at, updated_at`

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL.
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

// Create inserta el lote.
func (r *InventoryItemRepo) Create(item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.CompanyID, item.RequestID, item.LoadID, item.State,
		item.Units, item.Length, item.Weight, item.Diameter, item.RackID,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory item: %w", err)
	}
	return nil
}

// Update persiste estado y cantidades del lote.
func (r *InventoryItemRepo) Update(item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items SET
			state = $2, units = $3, length = $4, weight = $5, rack_id = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, item.State, item.Units, item.Length, item.Weight, item.RackID, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByRequest devuelve todos los lotes de una solicitud.
func (r *InventoryItemRepo) ListByRequest(requestID string) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + ` FROM inventory_items
		WHERE request_id = $1 ORDER BY created_at`
	return r.scanMany(query, requestID)
}

// ListInStorageByRequestAndRack devuelve los lotes IN_STORAGE de una
// solicitud en un rack concreto, más antiguos primero (se recogen en ese
// orden). La ocupación liberada y el inventario recogido pertenecen al
// mismo rack.
func (r *InventoryItemRepo) ListInStorageByRequestAndRack(requestID, rackID string) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + ` FROM inventory_items
		WHERE request_id = $1 AND rack_id = $2 AND state = $3 ORDER BY created_at`
	return r.scanMany(query, requestID, rackID, entity.ItemStateInStorage)
}

// CountInStorageByRequest cuenta los lotes IN_STORAGE de una solicitud.
func (r *InventoryItemRepo) CountInStorageByRequest(requestID string) (int, error) {
	query := `SELECT COUNT(*) FROM inventory_items WHERE request_id = $1 AND state = $2`
	var count int
	err := r.q.QueryRow(context.Background(), query, requestID, entity.ItemStateInStorage).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count in-storage items: %w", err)
	}
	return count, nil
}

// SumInStorageByRack suma tubos y metros IN_STORAGE de un rack (fuente de
// verdad para la reconciliación de ocupación).
func (r *InventoryItemRepo) SumInStorageByRack(rackID string) (int64, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(units), 0), COALESCE(SUM(length), 0)
		FROM inventory_items WHERE rack_id = $1 AND state = $2`
	var units int64
	var length decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, rackID, entity.ItemStateInStorage).Scan(&units, &length)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("sum in-storage by rack: %w", err)
	}
	return units, length, nil
}

func (r *InventoryItemRepo) scanMany(query string, args ...any) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var out []*entity.InventoryItem
	for rows.Next() {
		var item entity.InventoryItem
		if err := rows.Scan(
			&item.ID, &item.CompanyID, &item.RequestID, &item.LoadID, &item.State,
			&item.Units, &item.Length, &item.Weight, &item.Diameter, &item.RackID,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}
