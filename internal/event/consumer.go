package event

import (
	"context"
	"encoding/json"
	"errors"

	"shopcart/internal/domain"
	eventrepo "shopcart/internal/repository/event"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Consumer wires a NATS subscription to a worker pool.
type Consumer struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewConsumer(conn *nats.Conn, logger *zap.Logger) *Consumer {
	return &Consumer{conn: conn, logger: logger}
}

// Subscribe starts consuming order events. Deliveries are handed to the pool;
// the subscription itself never blocks on processing.
func (c *Consumer) Subscribe(pool *WorkerPool) (*nats.Subscription, error) {
	return c.conn.Subscribe(SubjectOrderPlaced, func(msg *nats.Msg) {
		var ev OrderPlaced
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			c.logger.Error("failed to unmarshal order event", zap.Error(err))
			return
		}
		pool.Submit(context.Background(), ev)
	})
}

// Recorder is the order-event processor: it records each event id and skips
// redeliveries, making consumption idempotent.
type Recorder struct {
	repo   eventrepo.Repository
	logger *zap.Logger
}

func NewRecorder(repo eventrepo.Repository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Process(ctx context.Context, ev OrderPlaced) error {
	if rec, err := r.repo.GetByID(ctx, ev.EventID); err == nil && rec.Processed {
		r.logger.Info("order event already processed", zap.String("event_id", ev.EventID))
		return nil
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := r.repo.Create(ctx, eventrepo.Record{ID: ev.EventID, Subject: SubjectOrderPlaced}); err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
	}

	r.logger.Info("order placed",
		zap.String("order_id", ev.OrderID),
		zap.String("owner_key", ev.OwnerKey),
		zap.Int64("total_cents", ev.TotalCents),
		zap.Int("item_count", ev.ItemCount))

	return r.repo.MarkProcessed(ctx, ev.EventID)
}
