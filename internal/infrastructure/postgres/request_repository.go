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

var _ repository.RequestRepository = (*RequestRepo)(nil)

const requestColumns = `
	id, company_id, reference, state, requested_units, requested_length,
	assigned_rack_ids, approved_by, approved_at, approval_notes,
	rejection_reason, contact_email, archived, created_at, updated_at`

// RequestRepo implementación de RequestRepository sobre PostgreSQL (usable con pool o tx).
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador de solicitudes. Pasar pool o tx (Querier).
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

// Create inserta la solicitud.
func (r *RequestRepo) Create(req *entity.StorageRequest) error {
	query := `
		INSERT INTO storage_requests (` + requestColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.CompanyID, req.Reference, req.State, req.RequestedUnits, req.RequestedLength,
		req.AssignedRackIDs, req.ApprovedBy, req.ApprovedAt, req.ApprovalNotes,
		req.RejectionReason, req.ContactEmail, req.Archived, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create storage request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud; nil si no existe.
func (r *RequestRepo) GetByID(id string) (*entity.StorageRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM storage_requests WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene la solicitud y bloquea la fila (SELECT FOR UPDATE)
// para serializar resoluciones concurrentes.
func (r *RequestRepo) GetForUpdate(id string) (*entity.StorageRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM storage_requests WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// Update persiste los campos mutables de la solicitud.
func (r *RequestRepo) Update(req *entity.StorageRequest) error {
	query := `
		UPDATE storage_requests SET
			state = $2, requested_units = $3, requested_length = $4,
			assigned_rack_ids = $5, approved_by = $6, approved_at = $7,
			approval_notes = $8, rejection_reason = $9, archived = $10,
			updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		req.ID, req.State, req.RequestedUnits, req.RequestedLength,
		req.AssignedRackIDs, req.ApprovedBy, req.ApprovedAt,
		req.ApprovalNotes, req.RejectionReason, req.Archived, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update storage request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany devuelve las solicitudes de un tenant, recientes primero.
func (r *RequestRepo) ListByCompany(companyID string, includeArchived bool) ([]*entity.StorageRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM storage_requests
		WHERE company_id = $1 AND (archived = false OR $2)
		ORDER BY created_at DESC`
	return r.scanMany(query, companyID, includeArchived)
}

// ListAll devuelve las solicitudes de todos los tenants (vista de operador).
func (r *RequestRepo) ListAll(includeArchived bool) ([]*entity.StorageRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM storage_requests
		WHERE (archived = false OR $1)
		ORDER BY created_at DESC`
	return r.scanMany(query, includeArchived)
}

func (r *RequestRepo) scanOne(query string, args ...any) (*entity.StorageRequest, error) {
	var req entity.StorageRequest
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&req.ID, &req.CompanyID, &req.Reference, &req.State, &req.RequestedUnits, &req.RequestedLength,
		&req.AssignedRackIDs, &req.ApprovedBy, &req.ApprovedAt, &req.ApprovalNotes,
		&req.RejectionReason, &req.ContactEmail, &req.Archived, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get storage request: %w", err)
	}
	return &req, nil
}

func (r *RequestRepo) scanMany(query string, args ...any) ([]*entity.StorageRequest, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list storage requests: %w", err)
	}
	defer rows.Close()

	var out []*entity.StorageRequest
	for rows.Next() {
		var req entity.StorageRequest
		if err := rows.Scan(
			&req.ID, &req.CompanyID, &req.Reference, &req.State, &req.RequestedUnits, &req.RequestedLength,
			&req.AssignedRackIDs, &req.ApprovedBy, &req.ApprovedAt, &req.ApprovalNotes,
			&req.RejectionReason, &req.ContactEmail, &req.Archived, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan storage request: %w", err)
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}
