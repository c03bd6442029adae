package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
)

// AuditHandler logs every lifecycle event the engine publishes. It gives
// operators a consumable trail of rental state changes without touching the
// write path.
type AuditHandler struct {
	Logger *slog.Logger
}

func (h AuditHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if h.Logger == nil {
		return nil
	}
	var envelope struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Time string `json:"time"`
	}
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		h.Logger.Warn("audit: undecodable event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	h.Logger.Info("audit", "event_id", envelope.ID, "type", envelope.Type, "key", string(msg.Key), "topic", msg.Topic, "occurred_at", envelope.Time)
	return nil
}

var _ MessageHandler = AuditHandler{}
