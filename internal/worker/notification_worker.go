package worker

import (
	"context"
	"fmt"

	"github.com/spec-kit/hostel-issues/internal/events"
)

// NotificationRegistrar subscribes notification handlers on a dispatcher.
type NotificationRegistrar interface {
	RegisterHandlers()
}

// CorpusInvalidator retires cached duplicate-check corpora.
type CorpusInvalidator interface {
	Invalidate(ctx context.Context) error
}

// corpusEvents change which issues a duplicate check may return.
var corpusEvents = []events.EventType{
	events.EventIssueCreated,
	events.EventIssueStatusChanged,
	events.EventIssueDeleted,
}

// StartSubscribers registers notification handlers and, when a cache is
// given, drops cached corpora after every write that changes the corpus.
func StartSubscribers(dispatcher events.Dispatcher, notifications NotificationRegistrar, corpus CorpusInvalidator) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if dispatcher == nil || corpus == nil {
		return
	}
	for _, eventType := range corpusEvents {
		dispatcher.Subscribe(eventType, func(ctx context.Context, _ events.Event) error {
			if err := corpus.Invalidate(ctx); err != nil {
				return fmt.Errorf("invalidate corpus: %w", err)
			}
			return nil
		})
	}
}
