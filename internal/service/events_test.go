package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/ndc-feature-tracker/internal/queue"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.CatalogChangedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.CatalogChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func TestCatalogNotifier_StampsAndPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewCatalogNotifier(pub, zaptest.NewLogger(t))
	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	n.now = func() time.Time { return at }

	<-n.Changed(queue.CatalogChangedEvent{Entity: queue.EntityAirline, Action: queue.ActionCreated, ID: 6})

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, at, ev.OccurredAt)
	assert.Equal(t, uint64(6), ev.ID)
}

func TestCatalogNotifier_PublishErrorIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	n := NewCatalogNotifier(pub, zaptest.NewLogger(t))

	select {
	case <-n.Changed(queue.CatalogChangedEvent{Entity: queue.EntityFeature, Action: queue.ActionDeleted}):
	case <-time.After(time.Second):
		t.Fatal("notifier did not finish")
	}
	assert.Len(t, pub.events, 1)
}

func TestNewCatalogNotifier_DefaultsToNop(t *testing.T) {
	n := NewCatalogNotifier(nil, zaptest.NewLogger(t))
	<-n.Changed(queue.CatalogChangedEvent{Entity: queue.EntityFeature, Action: queue.ActionCreated})
}
