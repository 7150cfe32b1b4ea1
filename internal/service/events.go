package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/metrics"
	"github.com/iliyamo/ndc-feature-tracker/internal/queue"
)

// EventPublisher delivers catalog change events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.CatalogChangedEvent) error
}

// NopPublisher drops events; used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.CatalogChangedEvent) error { return nil }

// AMQPPublisher opens a short-lived connection per event and publishes a
// persistent message to the catalog.changed queue.
type AMQPPublisher struct {
	URL string
}

func (p AMQPPublisher) Publish(ctx context.Context, ev queue.CatalogChangedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.CatalogQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue.CatalogQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
}

// CatalogNotifier publishes change events in the background so a slow or
// absent broker never delays the HTTP response.
type CatalogNotifier struct {
	pub     EventPublisher
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewCatalogNotifier(pub EventPublisher, log *zap.Logger) *CatalogNotifier {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &CatalogNotifier{pub: pub, log: log, timeout: 5 * time.Second, now: time.Now}
}

// Changed fills in the event id and time and publishes ev asynchronously.
// The returned channel is closed once the attempt has finished.
func (n *CatalogNotifier) Changed(ev queue.CatalogChangedEvent) <-chan struct{} {
	ev.EventID = uuid.NewString()
	ev.OccurredAt = n.now().UTC()
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.pub.Publish(ctx, ev); err != nil {
			metrics.CatalogEvents.WithLabelValues(ev.Entity, "error").Inc()
			n.log.Warn("publish catalog event failed",
				zap.String("entity", ev.Entity), zap.String("action", ev.Action), zap.Error(err))
			return
		}
		metrics.CatalogEvents.WithLabelValues(ev.Entity, "ok").Inc()
	}()
	return done
}
