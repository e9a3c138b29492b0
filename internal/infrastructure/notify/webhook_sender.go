package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/Almacenaje-api/internal/application/notify"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

var _ notify.ChatSender = (*WebhookChatSender)(nil)

// WebhookChatSender publica mensajes en un webhook entrante de chat
// (Slack/Teams/Google Chat aceptan el formato {"text": ...}).
type WebhookChatSender struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookChatSender construye el canal de chat.
func NewWebhookChatSender(webhookURL string) *WebhookChatSender {
	return &WebhookChatSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SendChatMessage publica el payload como mensaje de texto en el webhook.
func (s *WebhookChatSender) SendChatMessage(ctx context.Context, payload entity.NotificationPayload) error {
	if s.webhookURL == "" {
		return fmt.Errorf("webhook de chat sin configurar")
	}

	body, err := json.Marshal(map[string]string{"text": renderBody(payload)})
	if err != nil {
		return fmt.Errorf("serializar mensaje de chat: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("construir request de chat: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("enviar mensaje de chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook de chat respondió %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
