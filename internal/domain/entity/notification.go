package entity

import "time"

// Tipos de notificación. El tipo discrimina la construcción de plantilla y
// destinatarios en el despachador; el payload es opaco para la cola.
const (
	NotificationRequestApproved = "request_approved"
	NotificationRequestRejected = "request_rejected"
	NotificationLoadStatus      = "load_status"
	NotificationProjectComplete = "project_complete"
)

// NotificationPayload contiene lo necesario para que un canal externo
// construya el mensaje. El renderizado final (plantillas) es asunto del canal.
type NotificationPayload struct {
	Recipient string            `json:"recipient"` // email o identificador de canal
	Subject   string            `json:"subject"`   // resumen legible
	Fields    map[string]string `json:"fields"`    // referencia, cantidades, racks, motivo...
}

// NotificationEntry es una unidad pendiente de comunicación saliente con
// reintento acotado. Attempts cuenta cada intento de entrega, exitoso o no.
// Delivered=false con Attempts en el máximo marca fallo permanente: sigue en
// la tabla para inspección pero deja de seleccionarse.
type NotificationEntry struct {
	ID            string
	CompanyID     string
	Type          string
	RequestID     string // solicitud de referencia (para trazabilidad)
	Payload       NotificationPayload
	Delivered     bool
	Attempts      int
	LastAttemptAt *time.Time
	DeliveredAt   *time.Time
	LastError     string
	CreatedAt     time.Time
}

// Pending indica si la entrada sigue elegible para despacho.
func (n *NotificationEntry) Pending(maxAttempts int) bool {
	return !n.Delivered && n.Attempts < maxAttempts
}

// PermanentlyFailed indica si la entrada agotó sus reintentos sin éxito.
func (n *NotificationEntry) PermanentlyFailed(maxAttempts int) bool {
	return !n.Delivered && n.Attempts >= maxAttempts
}
