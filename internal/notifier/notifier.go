package notifier

import (
	"sync"

	"auction-engine/utils"
)

// Kind identifies a notification template.
type Kind string

const (
	KindNewBid       Kind = "new_bid"
	KindOutbid       Kind = "outbid"
	KindAuctionWon   Kind = "auction_won"
	KindAuctionEnded Kind = "auction_ended"
)

// Notification is one outbound message for the messaging collaborator.
type Notification struct {
	RecipientRef string
	Kind         Kind
	Payload      map[string]any
}

// Sender delivers a single notification. Delivery guarantees and retries
// belong to the implementation behind this interface.
type Sender interface {
	Send(n Notification) error
}

// LogSender writes notifications to the structured log. Default sender when
// no messaging collaborator is wired in.
type LogSender struct{}

func (LogSender) Send(n Notification) error {
	utils.Info("notification", map[string]any{
		"recipient": n.RecipientRef,
		"kind":      string(n.Kind),
		"payload":   n.Payload,
	})
	return nil
}

// Dispatcher decouples notification delivery from the bidding critical path.
// Dispatch hands the notification to a single worker goroutine through a
// buffered queue and returns immediately; when the queue is full the
// notification is dropped with a warning. A lost notification is an
// acceptable degradation, a blocked bid is not.
type Dispatcher struct {
	sender Sender
	queue  chan Notification
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher creates a dispatcher with the given queue capacity and starts
// its worker.
func NewDispatcher(sender Sender, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Notification, queueSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch enqueues a notification without blocking the caller.
func (d *Dispatcher) Dispatch(n Notification) {
	select {
	case d.queue <- n:
	default:
		utils.Warn("notification queue full, dropping", map[string]any{
			"recipient": n.RecipientRef,
			"kind":      string(n.Kind),
		})
	}
}

// Close drains the queue and stops the worker. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		if err := d.sender.Send(n); err != nil {
			// Best effort: log and move on, never propagate.
			utils.Error("failed to send notification", map[string]any{
				"recipient": n.RecipientRef,
				"kind":      string(n.Kind),
				"error":     err.Error(),
			})
		}
	}
}
