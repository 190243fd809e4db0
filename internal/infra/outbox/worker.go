package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker drains the outbox collection and publishes each event as a
// CloudEvents envelope. Topics are derived from the event name prefix:
// booking.created goes to booking.events.v1.
type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

// envelope is the CloudEvents 1.0 JSON shape on the wire.
type envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
	TraceParent     string          `json:"traceparent,omitempty"`
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				return err
			}
		}
	}
}

// drain publishes every due event, not just one per tick, so a burst of
// bookings does not lag behind the poll interval.
func (w *Worker) drain(ctx context.Context) error {
	for {
		doc, err := w.Store.Claim(ctx, w.workerID())
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		w.publishOne(ctx, doc)
	}
}

func (w *Worker) publishOne(ctx context.Context, doc *EventDocument) {
	payload, headers, err := w.format(doc)
	if err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return
	}
	if err := w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers); err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return
	}
	_ = w.Store.MarkSent(ctx, doc.ID)
}

func (w *Worker) format(doc *EventDocument) ([]byte, map[string]string, error) {
	if !json.Valid(doc.Payload) {
		return nil, nil, errors.New("outbox: event payload is not valid JSON")
	}
	evt := envelope{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Type:            doc.Name + ".v1",
		Source:          w.source(),
		Subject:         doc.Aggregate,
		Time:            doc.OccurredAt,
		DataContentType: "application/json",
		Data:            json.RawMessage(doc.Payload),
		TraceParent:     doc.Headers["traceparent"],
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	switch {
	case attempts < len(w.Backoff):
		return time.Now().Add(w.Backoff[attempts])
	case len(w.Backoff) > 0:
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	default:
		return time.Now().Add(5 * time.Second)
	}
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://villacove"
}
