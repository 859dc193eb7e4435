package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ashlink/marketplace/internal/kafka"
	"github.com/ashlink/marketplace/internal/market"
	"github.com/ashlink/marketplace/internal/redisx"
)

const (
	KindOrderPlaced  = "order_placed"
	KindStatusUpdate = "order_status"
)

// Service turns order events into per-user notifications. Suppliers are told
// about new orders on their products, buyers about status changes on theirs.
type Service struct {
	Store market.Store
	Redis *redis.Client
	Log   zerolog.Logger
}

// HandleOrderEvent is the consumer handler for both order topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup on event id: consumer groups redeliver on rebalance
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case market.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[market.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.record(ctx, p.SupplierID, p.OrderID, KindOrderPlaced,
			fmt.Sprintf("New order for %d tons (total %.2f)", p.Quantity, p.TotalAmount))

	case market.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[market.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.record(ctx, p.BuyerID, p.OrderID, KindStatusUpdate,
			fmt.Sprintf("Order moved from %s to %s", p.OldStatus, p.NewStatus))

	default:
		s.Log.Debug().Str("event_type", env.EventType).Msg("ignoring event")
		return nil
	}
}

func (s *Service) record(ctx context.Context, userID, orderID, kind, message string) error {
	n := market.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		OrderID:   orderID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.InsertNotification(ctx, n); err != nil {
		return err
	}
	s.Log.Info().Str("user_id", userID).Str("order_id", orderID).Str("kind", kind).Msg("notification recorded")
	return nil
}
