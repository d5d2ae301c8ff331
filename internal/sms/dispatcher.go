// internal/sms/dispatcher.go
package sms

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Message is one queued notification.
type Message struct {
	Ref        string
	Recipient  string
	Body       string
	EnqueuedAt time.Time
}

// Dispatcher decouples the schedulers from gateway latency: Enqueue never
// blocks a state transition, and delivery is best-effort at-least-once. A
// full queue drops the message with a log record rather than stalling a
// sweep.
type Dispatcher struct {
	sender Sender
	queue  chan Message
	done   chan struct{}
	logger *zap.Logger
}

func NewDispatcher(sender Sender, queueSize int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		sender: sender,
		queue:  make(chan Message, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Enqueue queues a message for delivery. Never blocks.
func (d *Dispatcher) Enqueue(recipient, message string) {
	msg := Message{
		Ref:        ulid.Make().String(),
		Recipient:  recipient,
		Body:       message,
		EnqueuedAt: time.Now(),
	}

	select {
	case d.queue <- msg:
	default:
		d.logger.Error("sms queue full, message dropped",
			zap.String("ref", msg.Ref),
			zap.String("recipient", recipient),
		)
	}
}

// Run delivers queued messages until ctx is cancelled, then drains what is
// left. A delivery failure is retried once and then logged; a duplicate on
// retry is acceptable, a silent loss is not.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-d.queue:
					d.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	err := d.sender.Send(ctx, msg.Recipient, msg.Body)
	if err != nil {
		err = d.sender.Send(ctx, msg.Recipient, msg.Body)
	}
	if err != nil {
		d.logger.Error("failed to deliver sms",
			zap.String("ref", msg.Ref),
			zap.String("recipient", msg.Recipient),
			zap.Error(err),
		)
		return
	}

	d.logger.Info("sms delivered",
		zap.String("ref", msg.Ref),
		zap.String("recipient", msg.Recipient),
	)
}
