package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

var _ repository.LoadRepository = (*LoadRepo)(nil)

const loadColumns = `
	id, request_id, company_id, direction, sequence, state, rack_id,
	planned_units, planned_length, planned_weight,
	completed_units, completed_length, completed_weight,
	completed_at, created_at, updated_at`

// LoadRepo implementación de LoadRepository sobre PostgreSQL (usable con pool o tx).
type LoadRepo struct {
	q Querier
}

// NewLoadRepository construye el adaptador de cargas. Pasar pool o tx (Querier).
func NewLoadRepository(q Querier) *LoadRepo {
	return &LoadRepo{q: q}
}

// Create inserta la carga. El constraint único sobre
// (request_id, direction, sequence) respalda la secuencia sin huecos ni
// duplicados y se reporta como ErrDuplicate.
func (r *LoadRepo) Create(load *entity.TruckingLoad) error {
	query := `
		INSERT INTO trucking_loads (` + loadColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err := r.q.Exec(context.Background(), query,
		load.ID, load.RequestID, load.CompanyID, load.Direction, load.Sequence, load.State, load.RackID,
		load.PlannedUnits, load.PlannedLength, load.PlannedWeight,
		load.CompletedUnits, load.CompletedLength, load.CompletedWeight,
		load.CompletedAt, load.CreatedAt, load.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create trucking load: %w", err)
	}
	return nil
}

// GetByID obtiene una carga; nil si no existe.
func (r *LoadRepo) GetByID(id string) (*entity.TruckingLoad, error) {
	query := `SELECT ` + loadColumns + ` FROM trucking_loads WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene la carga y bloquea la fila (SELECT FOR UPDATE).
func (r *LoadRepo) GetForUpdate(id string) (*entity.TruckingLoad, error) {
	query := `SELECT ` + loadColumns + ` FROM trucking_loads WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// Update persiste los campos mutables de la carga.
func (r *LoadRepo) Update(load *entity.TruckingLoad) error {
	query := `
		UPDATE trucking_loads SET
			state = $2, completed_units = $3, completed_length = $4,
			completed_weight = $5, completed_at = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		load.ID, load.State, load.CompletedUnits, load.CompletedLength,
		load.CompletedWeight, load.CompletedAt, load.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update trucking load: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextSequence devuelve el siguiente número por (solicitud, dirección).
// El llamador debe tener bloqueada la fila de la solicitud para que dos
// registros concurrentes no lean el mismo máximo.
func (r *LoadRepo) NextSequence(requestID, direction string) (int, error) {
	query := `
		SELECT COALESCE(MAX(sequence), 0) + 1
		FROM trucking_loads WHERE request_id = $1 AND direction = $2`
	var next int
	if err := r.q.QueryRow(context.Background(), query, requestID, direction).Scan(&next); err != nil {
		return 0, fmt.Errorf("next load sequence: %w", err)
	}
	return next, nil
}

// ListByRequest devuelve las cargas de una solicitud en orden de creación.
func (r *LoadRepo) ListByRequest(requestID string) ([]*entity.TruckingLoad, error) {
	query := `
		SELECT ` + loadColumns + ` FROM trucking_loads
		WHERE request_id = $1 ORDER BY direction, sequence`
	rows, err := r.q.Query(context.Background(), query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list trucking loads: %w", err)
	}
	defer rows.Close()

	var out []*entity.TruckingLoad
	for rows.Next() {
		var load entity.TruckingLoad
		if err := rows.Scan(
			&load.ID, &load.RequestID, &load.CompanyID, &load.Direction, &load.Sequence, &load.State, &load.RackID,
			&load.PlannedUnits, &load.PlannedLength, &load.PlannedWeight,
			&load.CompletedUnits, &load.CompletedLength, &load.CompletedWeight,
			&load.CompletedAt, &load.CreatedAt, &load.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan trucking load: %w", err)
		}
		out = append(out, &load)
	}
	return out, rows.Err()
}

func (r *LoadRepo) scanOne(query string, args ...any) (*entity.TruckingLoad, error) {
	var load entity.TruckingLoad
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&load.ID, &load.RequestID, &load.CompanyID, &load.Direction, &load.Sequence, &load.State, &load.RackID,
		&load.PlannedUnits, &load.PlannedLength, &load.PlannedWeight,
		&load.CompletedUnits, &load.CompletedLength, &load.CompletedWeight,
		&load.CompletedAt, &load.CreatedAt, &load.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trucking load: %w", err)
	}
	return &load, nil
}
