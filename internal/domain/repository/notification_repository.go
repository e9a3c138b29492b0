package repository

import (
	"time"

	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// NotificationRepository define el puerto de la cola durable de notificaciones.
// Inserción append-only; la selección para despacho es FIFO por creación
// dentro del conjunto no entregado con intentos por debajo del techo.
type NotificationRepository interface {
	Create(entry *entity.NotificationEntry) error
	GetByID(id string) (*entity.NotificationEntry, error)
	// ClaimBatch selecciona hasta limit entradas elegibles, más antiguas
	// primero, bloqueando cada fila (FOR UPDATE SKIP LOCKED) para que dos
	// workers no envíen dos veces la misma entrada. Debe llamarse dentro de
	// una transacción.
	ClaimBatch(limit, maxAttempts int) ([]*entity.NotificationEntry, error)
	MarkDelivered(id string, at time.Time) error
	// RecordFailure incrementa attempts y registra el último error y momento.
	RecordFailure(id string, lastError string, at time.Time) error
	ListPermanentlyFailed(maxAttempts int) ([]*entity.NotificationEntry, error)
	// ResetAttempts reencola manualmente una entrada fallida (attempts = 0).
	ResetAttempts(id string) error
}
