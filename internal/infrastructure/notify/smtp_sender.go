// Package notify implementa los canales de salida de la cola de
// notificaciones: correo SMTP y webhook de chat.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/jhoicas/Almacenaje-api/internal/application/notify"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
	"github.com/jhoicas/Almacenaje-api/pkg/config"
)

var _ notify.EmailSender = (*SMTPSender)(nil)

// SMTPSender envía correos por SMTP usando gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender construye el canal de correo desde la configuración.
func NewSMTPSender(cfg config.NotifyConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

// SendEmail envía el payload como correo de texto plano. gomail no acepta
// contexto, así que el envío corre en una goroutine y se abandona si el
// contexto expira antes (el dial tiene su propio timeout de red).
func (s *SMTPSender) SendEmail(ctx context.Context, payload entity.NotificationPayload) error {
	if payload.Recipient == "" {
		return fmt.Errorf("email sin destinatario")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", payload.Recipient)
	msg.SetHeader("Subject", payload.Subject)
	msg.SetBody("text/plain", renderBody(payload))

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("enviar email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// renderBody convierte los campos del payload en líneas "clave: valor" en
// orden estable.
func renderBody(payload entity.NotificationPayload) string {
	keys := make([]string, 0, len(payload.Fields))
	for k := range payload.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(payload.Subject)
	b.WriteString("\n\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, payload.Fields[k])
	}
	return b.String()
}
