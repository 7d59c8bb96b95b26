package event

import (
	"context"
	"encoding/json"
	"time"

	"shopcart/internal/domain"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher emits order events onto NATS.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSPublisher(conn *nats.Conn, logger *zap.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, logger: logger}
}

// OrderPlaced publishes the checkout event. The caller treats failures as
// best-effort; they are returned for logging only.
func (p *NATSPublisher) OrderPlaced(_ context.Context, order domain.Order) error {
	payload := OrderPlaced{
		EventID:    uuid.NewString(),
		OrderID:    order.ID,
		OwnerKey:   order.OwnerKey,
		TotalCents: order.TotalCents,
		ItemCount:  len(order.Items),
		PlacedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(SubjectOrderPlaced, data); err != nil {
		return err
	}
	p.logger.Info("order event published",
		zap.String("event_id", payload.EventID),
		zap.String("order_id", order.ID))
	return nil
}
