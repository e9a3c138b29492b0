package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

const notificationColumns = `
	id, company_id, type, request_id, payload, delivered, attempts,
	last_attempt_at, delivered_at, last_error, created_at`

// NotificationRepo implementación de NotificationRepository sobre PostgreSQL.
// La tabla es la cola durable: inserción append-only en la transacción del
// productor, selección FIFO con bloqueo de fila en el worker.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador de la cola. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create inserta la entrada (payload serializado a JSONB).
func (r *NotificationRepo) Create(entry *entity.NotificationEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err = r.q.Exec(context.Background(), query,
		entry.ID, entry.CompanyID, entry.Type, entry.RequestID, payload,
		entry.Delivered, entry.Attempts, entry.LastAttemptAt, entry.DeliveredAt,
		entry.LastError, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada; nil si no existe.
func (r *NotificationRepo) GetByID(id string) (*entity.NotificationEntry, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	var entry entity.NotificationEntry
	var payload []byte
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&entry.ID, &entry.CompanyID, &entry.Type, &entry.RequestID, &payload,
		&entry.Delivered, &entry.Attempts, &entry.LastAttemptAt, &entry.DeliveredAt,
		&entry.LastError, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if err := json.Unmarshal(payload, &entry.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal notification payload: %w", err)
	}
	return &entry, nil
}

// ClaimBatch selecciona hasta limit entradas elegibles, más antiguas primero,
// bloqueando cada fila con FOR UPDATE SKIP LOCKED: una entrada reclamada por
// otro worker simplemente no aparece en este lote. Llamar dentro de una tx.
func (r *NotificationRepo) ClaimBatch(limit, maxAttempts int) ([]*entity.NotificationEntry, error) {
	query := `
		SELECT ` + notificationColumns + ` FROM notifications
		WHERE delivered = false AND attempts < $2
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(context.Background(), query, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("claim notification batch: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// MarkDelivered marca la entrada como entregada y contabiliza el intento:
// attempts cuenta todos los intentos de entrega, no solo los fallidos, así
// el viaje exitoso de ida y vuelta termina con attempts = 1.
func (r *NotificationRepo) MarkDelivered(id string, at time.Time) error {
	query := `
		UPDATE notifications
		SET delivered = true, delivered_at = $2, attempts = attempts + 1,
		    last_attempt_at = $2, last_error = ''
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("mark notification delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordFailure incrementa attempts y registra el último error y momento.
// Al alcanzar el techo, la entrada deja de ser elegible (la excluye el WHERE
// de ClaimBatch) y queda como marcador de fallo permanente.
func (r *NotificationRepo) RecordFailure(id string, lastError string, at time.Time) error {
	query := `
		UPDATE notifications
		SET attempts = attempts + 1, last_error = $2, last_attempt_at = $3
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, lastError, at)
	if err != nil {
		return fmt.Errorf("record notification failure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPermanentlyFailed devuelve las entradas con reintentos agotados.
func (r *NotificationRepo) ListPermanentlyFailed(maxAttempts int) ([]*entity.NotificationEntry, error) {
	query := `
		SELECT ` + notificationColumns + ` FROM notifications
		WHERE delivered = false AND attempts >= $1
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("list failed notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// ResetAttempts reencola una entrada fallida para reenvío manual.
func (r *NotificationRepo) ResetAttempts(id string) error {
	query := `
		UPDATE notifications
		SET attempts = 0, last_error = ''
		WHERE id = $1 AND delivered = false`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("reset notification attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanNotifications(rows pgx.Rows) ([]*entity.NotificationEntry, error) {
	var out []*entity.NotificationEntry
	for rows.Next() {
		var entry entity.NotificationEntry
		var payload []byte
		if err := rows.Scan(
			&entry.ID, &entry.CompanyID, &entry.Type, &entry.RequestID, &payload,
			&entry.Delivered, &entry.Attempts, &entry.LastAttemptAt, &entry.DeliveredAt,
			&entry.LastError, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if err := json.Unmarshal(payload, &entry.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal notification payload: %w", err)
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}
