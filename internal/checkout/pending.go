package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qualclamps/storefront/internal/order"
)

// ErrNoPendingOrder indicates no staged order matches the payment id.
var ErrNoPendingOrder = errors.New("no pending order for payment id")

// PendingOrder is an order staged while the buyer approves an external
// payment. It only becomes durable once the payment executes.
type PendingOrder struct {
	SessionID string      `json:"sessionId"`
	PaymentID string      `json:"paymentId"`
	Order     order.Order `json:"order"`
}

// PendingStore stages orders awaiting payment approval.
type PendingStore interface {
	Put(ctx context.Context, po PendingOrder) error
	Get(ctx context.Context, paymentID string) (PendingOrder, error)
	Delete(ctx context.Context, paymentID string) error
}

// RedisPendingStore keys staged orders by provider payment id with a TTL, so
// abandoned approvals evaporate.
type RedisPendingStore struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s *RedisPendingStore) key(paymentID string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "pending-order:"
	}
	return prefix + paymentID
}

func (s *RedisPendingStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return time.Hour
	}
	return s.TTL
}

// Put stages the order under its payment id.
func (s *RedisPendingStore) Put(ctx context.Context, po PendingOrder) error {
	if s == nil || s.Client == nil {
		return errors.New("pending store not configured")
	}
	if po.PaymentID == "" {
		return errors.New("pending order requires a payment id")
	}
	data, err := json.Marshal(po)
	if err != nil {
		return fmt.Errorf("checkout: encode pending order: %w", err)
	}
	if err := s.Client.Set(ctx, s.key(po.PaymentID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("checkout: stage pending order: %w", err)
	}
	return nil
}

// Get loads the staged order for a payment id.
func (s *RedisPendingStore) Get(ctx context.Context, paymentID string) (PendingOrder, error) {
	if s == nil || s.Client == nil {
		return PendingOrder{}, errors.New("pending store not configured")
	}
	data, err := s.Client.Get(ctx, s.key(paymentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return PendingOrder{}, ErrNoPendingOrder
		}
		return PendingOrder{}, fmt.Errorf("checkout: load pending order: %w", err)
	}
	var po PendingOrder
	if err := json.Unmarshal(data, &po); err != nil {
		return PendingOrder{}, fmt.Errorf("checkout: decode pending order: %w", err)
	}
	return po, nil
}

// Delete clears a staged order.
func (s *RedisPendingStore) Delete(ctx context.Context, paymentID string) error {
	if s == nil || s.Client == nil {
		return errors.New("pending store not configured")
	}
	if err := s.Client.Del(ctx, s.key(paymentID)).Err(); err != nil {
		return fmt.Errorf("checkout: clear pending order: %w", err)
	}
	return nil
}
