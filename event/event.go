package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360/streamsift/errors"
)

// Event is one structured event moving through a pipeline. The stage
// currently holding an Event owns it exclusively; predicate stages republish
// it unchanged and transform stages may mutate the Document before handing
// it downstream.
type Event struct {
	// ID is a globally unique identifier assigned at receipt.
	ID string
	// ReceivedAt is the time the event entered the pipeline.
	ReceivedAt time.Time
	// Doc holds the event data.
	Doc *Document
}

// New wraps an already-decoded object into an Event.
func New(data map[string]any) *Event {
	return &Event{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now().UTC(),
		Doc:        NewDocument(data),
	}
}

// Parse decodes raw JSON bytes into an Event. Non-object payloads fail with
// invalid data; the stream stage treats such failures as per-event misses.
func Parse(data []byte) (*Event, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, errors.Wrap(err, "Event", "Parse", "document parsing")
	}
	return &Event{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now().UTC(),
		Doc:        doc,
	}, nil
}
