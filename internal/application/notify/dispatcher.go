package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Almacenaje-api/internal/domain"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/internal/domain/repository"
	"github.com/jhoicas/Almacenaje-api/pkg/logger"
)

// NoEligibleMessage mensaje devuelto cuando no hay entradas por despachar.
const NoEligibleMessage = "no notifications to process"

// EntryError error de despacho de una entrada concreta.
type EntryError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Summary resultado de una pasada de despacho. Skipped cuenta entradas
// reclamadas que la pasada dejó sin intentar (contexto cancelado a mitad de
// lote); no consumen intento y vuelven a ser elegibles en la siguiente.
type Summary struct {
	Message   string       `json:"message"`
	Processed int          `json:"processed"`
	Success   int          `json:"success"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
	Errors    []EntryError `json:"errors,omitempty"`
}

// Options parámetros del worker.
type Options struct {
	BatchSize   int           // entradas máximas por pasada
	MaxAttempts int           // techo de reintentos por entrada
	SendTimeout time.Duration // timeout por intento de envío externo
}

// DispatcherUseCase drena la cola de notificaciones en lotes acotados.
// Corre en su propio ciclo (ticker o disparo HTTP de un scheduler externo),
// desacoplado de la latencia de las aprobaciones; el espaciado de reintentos
// lo gobierna el intervalo de ejecución, no un sleep en proceso.
type DispatcherUseCase struct {
	txRunner TxRunner
	email    EmailSender
	chat     ChatSender
	opts     Options
	log      *logger.Logger
}

// NewDispatcherUseCase construye el worker. email o chat pueden ser nil si el
// canal no está configurado; los tipos que lo requieran fallarán y quedarán
// en la contabilidad de reintentos.
func NewDispatcherUseCase(txRunner TxRunner, email EmailSender, chat ChatSender, opts Options, log *logger.Logger) *DispatcherUseCase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 15 * time.Second
	}
	return &DispatcherUseCase{txRunner: txRunner, email: email, chat: chat, opts: opts, log: log}
}

// RunOnce ejecuta una pasada: reclama hasta BatchSize entradas elegibles
// (no entregadas, intentos bajo el techo, más antiguas primero), construye el
// mensaje por canal según el tipo y lo envía con timeout acotado. El fallo de
// una entrada no aborta el resto del lote. Idempotente: sin elegibles
// devuelve processed=0 y no muta nada.
func (uc *DispatcherUseCase) RunOnce(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	err := uc.txRunner.RunNotifications(ctx, func(notifRepo repository.NotificationRepository) error {
		batch, err := notifRepo.ClaimBatch(uc.opts.BatchSize, uc.opts.MaxAttempts)
		if err != nil {
			return fmt.Errorf("reclamar lote: %w", err)
		}
		if len(batch) == 0 {
			summary.Message = NoEligibleMessage
			return nil
		}
		summary.Processed = len(batch)

		for i, entry := range batch {
			// Apagado a mitad de lote: lo no intentado no carga intento.
			if ctx.Err() != nil {
				summary.Skipped = len(batch) - i
				break
			}
			if err := uc.deliver(ctx, entry); err != nil {
				now := time.Now()
				if recErr := notifRepo.RecordFailure(entry.ID, err.Error(), now); recErr != nil {
					return recErr
				}
				summary.Failed++
				summary.Errors = append(summary.Errors, EntryError{ID: entry.ID, Error: err.Error()})

				// Al agotar el techo la entrada deja de seleccionarse; se
				// reporta distinto en logs para atención del operador.
				if entry.Attempts+1 >= uc.opts.MaxAttempts {
					uc.log.Error().
						Str("notification_id", entry.ID).
						Str("type", entry.Type).
						Int("attempts", entry.Attempts+1).
						Err(err).
						Msg("notificación con reintentos agotados: requiere atención manual")
				} else {
					uc.log.Warn().
						Str("notification_id", entry.ID).
						Str("type", entry.Type).
						Err(err).
						Msg("entrega fallida, reintentará en la próxima pasada")
				}
				continue
			}
			if err := notifRepo.MarkDelivered(entry.ID, time.Now()); err != nil {
				return err
			}
			summary.Success++
		}
		summary.Message = fmt.Sprintf("procesadas %d notificaciones", summary.Processed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// deliver envía la entrada por los canales que su tipo requiere, con timeout
// por intento para que una llamada colgada no estrangule el lote.
func (uc *DispatcherUseCase) deliver(ctx context.Context, entry *entity.NotificationEntry) error {
	sendCtx, cancel := context.WithTimeout(ctx, uc.opts.SendTimeout)
	defer cancel()

	email, chat := channelsFor(entry.Type)
	if email {
		if uc.email == nil {
			return fmt.Errorf("canal email no configurado")
		}
		if err := uc.email.SendEmail(sendCtx, entry.Payload); err != nil {
			return fmt.Errorf("email: %w", err)
		}
	}
	if chat {
		if uc.chat == nil {
			return fmt.Errorf("canal chat no configurado")
		}
		if err := uc.chat.SendChatMessage(sendCtx, entry.Payload); err != nil {
			return fmt.Errorf("chat: %w", err)
		}
	}
	return nil
}

// channelsFor decide los canales por tipo de entrada: las resoluciones de
// solicitud van al cliente por correo (y chat interno si aplica); los avances
// de carga van al canal de chat del patio.
func channelsFor(entryType string) (email, chat bool) {
	switch entryType {
	case entity.NotificationRequestApproved, entity.NotificationProjectComplete:
		return true, true
	case entity.NotificationRequestRejected:
		return true, false
	case entity.NotificationLoadStatus:
		return false, true
	default:
		return true, false
	}
}

// ListFailed expone las entradas con reintentos agotados para inspección.
func (uc *DispatcherUseCase) ListFailed(ctx context.Context) ([]*entity.NotificationEntry, error) {
	var out []*entity.NotificationEntry
	err := uc.txRunner.RunNotifications(ctx, func(notifRepo repository.NotificationRepository) error {
		failed, err := notifRepo.ListPermanentlyFailed(uc.opts.MaxAttempts)
		if err != nil {
			return err
		}
		out = failed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Resend reinicia el contador de intentos de una entrada fallida para que la
// próxima pasada vuelva a seleccionarla (reenvío manual del operador).
func (uc *DispatcherUseCase) Resend(ctx context.Context, entryID string) error {
	return uc.txRunner.RunNotifications(ctx, func(notifRepo repository.NotificationRepository) error {
		entry, err := notifRepo.GetByID(entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		return notifRepo.ResetAttempts(entryID)
	})
}
