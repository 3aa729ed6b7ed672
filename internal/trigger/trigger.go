package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
)

type EventType string

const (
	Created EventType = "created"
	Updated EventType = "updated"
	Deleted EventType = "deleted"
)

// Event is one document lifecycle event as delivered by the trigger
// infrastructure. Before is empty on creates, After is empty on deletes.
type Event struct {
	Collection string          `json:"collection"`
	Type       EventType       `json:"eventType"`
	Path       string          `json:"document"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// DocumentID returns the last segment of the document path.
func (e *Event) DocumentID() string {
	segments := e.PathSegments()
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// PathSegments splits the document path, e.g.
// "rooms/r1/members/0xA" -> ["rooms", "r1", "members", "0xA"].
func (e *Event) PathSegments() []string {
	if e.Path == "" {
		return nil
	}
	return strings.Split(strings.Trim(e.Path, "/"), "/")
}

type HandlerFunc func(ctx context.Context, ev *Event) error

type registration struct {
	collection string
	eventType  EventType
}

// Dispatcher routes events to the handlers registered for their
// (collection, event type) pair. Multiple handlers may share a pair; all of
// them run, and their errors are joined so the delivery infrastructure
// retries the whole event.
type Dispatcher struct {
	handlers map[registration][]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[registration][]HandlerFunc)}
}

func (d *Dispatcher) Register(collection string, eventType EventType, h HandlerFunc) {
	key := registration{collection: collection, eventType: eventType}
	d.handlers[key] = append(d.handlers[key], h)
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) error {
	key := registration{collection: ev.Collection, eventType: ev.Type}
	handlers := d.handlers[key]
	if len(handlers) == 0 {
		log.Printf("Trigger: no handler registered for %s %s, ignoring", ev.Collection, ev.Type)
		return nil
	}

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
