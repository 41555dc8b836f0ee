// Package notify delivers order events to downstream consumers such as the
// kitchen display and the customer email service.
package notify

import (
	"context"

	"coffeeshop/internal/model"

	"github.com/rs/zerolog"
)

// RoutingKeyOrderCreated is the topic routing key of OrderCreated events.
const RoutingKeyOrderCreated = "order.created"

// Notifier publishes order lifecycle events.
type Notifier interface {
	// OrderCreated announces a freshly checked out order.
	OrderCreated(ctx context.Context, event model.OrderCreatedEvent) error

	// Close releases broker resources.
	Close() error
}

// LogNotifier writes events to the log instead of a broker.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a Notifier used when no broker is configured.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) OrderCreated(_ context.Context, event model.OrderCreatedEvent) error {
	n.logger.Info().
		Str("order_id", event.OrderID.String()).
		Str("customer_email", event.Customer.Email).
		Str("total", event.Total.String()).
		Str("currency", string(event.Currency)).
		Int("line_count", len(event.Items)).
		Msg("order created")
	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}
