package dto

import "time"

// FailedNotificationResponse entrada que agotó sus reintentos y requiere
// atención manual del operador (reenvío reiniciando el contador).
type FailedNotificationResponse struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	RequestID     string     `json:"request_id,omitempty"`
	Recipient     string     `json:"recipient"`
	Subject       string     `json:"subject"`
	Attempts      int        `json:"attempts"`
	LastError     string     `json:"last_error"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
