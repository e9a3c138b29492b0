package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Almacenaje-api/internal/application/allocation"
	"github.com/jhoicas/Almacenaje-api/internal/application/loads"
	"github.com/jhoicas/Almacenaje-api/internal/application/notify"
	"github.com/jhoicas/Almacenaje-api/internal/application/usecase"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
)

// Ensure TxRunner implements los runners de allocation, loads, racks y notify.
var _ allocation.TxRunner = (*TxRunner)(nil)
var _ loads.TxRunner = (*TxRunner)(nil)
var _ usecase.RackTxRunner = (*TxRunner)(nil)
var _ notify.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del ciclo de aprobación y hace
// Commit o Rollback. Los bloqueos de fila (solicitud y racks) viven lo que
// dura la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	requestRepo repository.RequestRepository,
	rackRepo repository.RackRepository,
	auditRepo repository.AuditRepository,
	notifRepo repository.NotificationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	requestRepo := NewRequestRepository(tx)
	rackRepo := NewRackRepository(tx)
	auditRepo := NewAuditRepository(tx)
	notifRepo := NewNotificationRepository(tx)

	if err := fn(requestRepo, rackRepo, auditRepo, notifRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunLoads inicia una transacción con los repos del seguimiento de cargas
// (finalización de cargas, reconciliación de inventario y ocupación).
func (r *TxRunner) RunLoads(ctx context.Context, fn func(
	loadRepo repository.LoadRepository,
	itemRepo repository.InventoryItemRepository,
	rackRepo repository.RackRepository,
	requestRepo repository.RequestRepository,
	notifRepo repository.NotificationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	loadRepo := NewLoadRepository(tx)
	itemRepo := NewInventoryItemRepository(tx)
	rackRepo := NewRackRepository(tx)
	requestRepo := NewRequestRepository(tx)
	notifRepo := NewNotificationRepository(tx)

	if err := fn(loadRepo, itemRepo, rackRepo, requestRepo, notifRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRacks inicia una transacción para la reconciliación de un rack: el
// recálculo de ocupación y el rastro de auditoría se confirman juntos.
func (r *TxRunner) RunRacks(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	rackRepo repository.RackRepository,
	auditRepo repository.AuditRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInventoryItemRepository(tx), NewRackRepository(tx), NewAuditRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunNotifications inicia una transacción para una pasada de despacho: el
// SKIP LOCKED de ClaimBatch retiene las filas reclamadas hasta el commit.
func (r *TxRunner) RunNotifications(ctx context.Context, fn func(
	notifRepo repository.NotificationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewNotificationRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
