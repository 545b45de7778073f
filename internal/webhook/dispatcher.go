package webhook

import (
	"sync"

	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultSubscriberQueue = 16

// DeltaObserver is notified of every published delta
type DeltaObserver interface {
	ObserveWebhookDelta(trigger string, delivered int)
}

// Dispatcher fans deltas out to the subscribers of their trigger. A
// subscriber whose buffer is full misses the delta; publishing never blocks.
type Dispatcher struct {
	mu       sync.RWMutex
	queue    int
	subs     map[string][]chan Delta
	closed   bool
	observer DeltaObserver
}

type DispatcherParams struct {
	fx.In

	Config   *config.Config
	Observer DeltaObserver `optional:"true"`
}

// NewDispatcher creates a Dispatcher sized from the webhook configuration
func NewDispatcher(params DispatcherParams) *Dispatcher {
	queue := params.Config.Webhook.SubscriberQueue
	if queue <= 0 {
		queue = defaultSubscriberQueue
	}
	return &Dispatcher{
		queue:    queue,
		subs:     make(map[string][]chan Delta),
		observer: params.Observer,
	}
}

// Subscribe returns a channel receiving the deltas of trigger. The channel is
// closed by Close.
func (d *Dispatcher) Subscribe(trigger string) <-chan Delta {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan Delta, d.queue)
	if d.closed {
		close(ch)
		return ch
	}
	d.subs[trigger] = append(d.subs[trigger], ch)
	return ch
}

// Publish delivers delta to the subscribers of its trigger and returns how
// many received it
func (d *Dispatcher) Publish(delta Delta) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return 0
	}

	delivered := 0
	for _, ch := range d.subs[delta.Type] {
		select {
		case ch <- delta:
			delivered++
		default:
			logger.Warn("Dropping webhook delta, subscriber queue is full",
				zap.String("trigger", delta.Type),
				zap.String("object", delta.Object),
			)
		}
	}
	if d.observer != nil {
		d.observer.ObserveWebhookDelta(delta.Type, delivered)
	}
	return delivered
}

// PublishPayload publishes every delta of payload
func (d *Dispatcher) PublishPayload(payload Payload) {
	for _, delta := range payload.Deltas {
		d.Publish(delta)
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	for trigger, chans := range d.subs {
		for _, ch := range chans {
			close(ch)
		}
		delete(d.subs, trigger)
	}
}
