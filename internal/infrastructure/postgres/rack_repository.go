package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

var _ repository.RackRepository = (*RackRepo)(nil)

const rackColumns = `
	id, company_id, code, capacity_units, occupied_units,
	capacity_length, occupied_length, created_at, updated_at`

// RackRepo implementación de RackRepository sobre PostgreSQL (usable con pool o tx).
type RackRepo struct {
	q Querier
}

// NewRackRepository construye el adaptador de racks. Pasar pool o tx (Querier).
func NewRackRepository(q Querier) *RackRepo {
	return &RackRepo{q: q}
}

// Create inserta el rack.
func (r *RackRepo) Create(rack *entity.Rack) error {
	query := `
		INSERT INTO racks (` + rackColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.q.Exec(context.Background(), query,
		rack.ID, rack.CompanyID, rack.Code, rack.CapacityUnits, rack.OccupiedUnits,
		rack.CapacityLength, rack.OccupiedLength, rack.CreatedAt, rack.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create rack: %w", err)
	}
	return nil
}

// GetByID obtiene un rack; nil si no existe.
func (r *RackRepo) GetByID(id string) (*entity.Rack, error) {
	query := `SELECT ` + rackColumns + ` FROM racks WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene un rack y bloquea su fila (SELECT FOR UPDATE).
func (r *RackRepo) GetForUpdate(id string) (*entity.Rack, error) {
	query := `SELECT ` + rackColumns + ` FROM racks WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// GetManyForUpdate bloquea las filas de los racks en orden estable de ID
// (evita interbloqueos entre aprobaciones concurrentes con racks en común)
// y devuelve los racks en el orden pedido por el llamador.
func (r *RackRepo) GetManyForUpdate(ids []string) ([]*entity.Rack, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	query := `
		SELECT ` + rackColumns + ` FROM racks
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, sorted)
	if err != nil {
		return nil, fmt.Errorf("lock racks: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*entity.Rack, len(ids))
	for rows.Next() {
		var rack entity.Rack
		if err := scanRack(rows, &rack); err != nil {
			return nil, err
		}
		byID[rack.ID] = &rack
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*entity.Rack, 0, len(ids))
	for _, id := range ids {
		if rack, ok := byID[id]; ok {
			out = append(out, rack)
		}
	}
	return out, nil
}

// List devuelve todos los racks, por código.
func (r *RackRepo) List() ([]*entity.Rack, error) {
	query := `SELECT ` + rackColumns + ` FROM racks ORDER BY code`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list racks: %w", err)
	}
	defer rows.Close()

	var out []*entity.Rack
	for rows.Next() {
		var rack entity.Rack
		if err := scanRack(rows, &rack); err != nil {
			return nil, err
		}
		out = append(out, &rack)
	}
	return out, rows.Err()
}

// UpdateOccupancy persiste los contadores de ocupación de un rack ya bloqueado.
func (r *RackRepo) UpdateOccupancy(rack *entity.Rack) error {
	query := `
		UPDATE racks SET occupied_units = $2, occupied_length = $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, rack.ID, rack.OccupiedUnits, rack.OccupiedLength)
	if err != nil {
		return fmt.Errorf("update rack occupancy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RackRepo) scanOne(query string, args ...any) (*entity.Rack, error) {
	var rack entity.Rack
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&rack.ID, &rack.CompanyID, &rack.Code, &rack.CapacityUnits, &rack.OccupiedUnits,
		&rack.CapacityLength, &rack.OccupiedLength, &rack.CreatedAt, &rack.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rack: %w", err)
	}
	return &rack, nil
}

func scanRack(rows pgx.Rows, rack *entity.Rack) error {
	if err := rows.Scan(
		&rack.ID, &rack.CompanyID, &rack.Code, &rack.CapacityUnits, &rack.OccupiedUnits,
		&rack.CapacityLength, &rack.OccupiedLength, &rack.CreatedAt, &rack.UpdatedAt,
	); err != nil {
		return fmt.Errorf("scan rack: %w", err)
	}
	return nil
}
