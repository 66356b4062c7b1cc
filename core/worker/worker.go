// Package worker runs ingestion jobs off the caller's goroutine and
// streams progress events over a channel, so interactive surfaces
// never block on bulk writes.
package worker

import (
	"context"
	"strings"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/ingest"
	"github.com/patrickudo2004/parchments/internal/logging"
)

// Status tags one worker event.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusProgress   Status = "progress"
	StatusSaving     Status = "saving"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Event is one message from a running import. Events arrive in
// protocol order: processing, zero or more progress, saving, then
// exactly one terminal complete or error.
type Event struct {
	Status   Status  `json:"status"`
	Progress float64 `json:"progress,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Status == StatusComplete || e.Status == StatusError
}

// Request carries one import into a worker.
type Request struct {
	Meta    ingest.Metadata
	Kind    ingest.Kind
	Payload []byte
}

// eventBuffer sizes the event channel; progress cadence is already
// bounded by the parser, so a small buffer absorbs bursts.
const eventBuffer = 16

// Run executes one import on its own goroutine and returns the event
// channel. The channel is closed after the terminal event. Cancelling
// ctx stops the import; any verses already upserted are harmless and
// the version is never marked downloaded.
func Run(ctx context.Context, p *ingest.Pipeline, req Request) <-chan Event {
	events := make(chan Event, eventBuffer)
	go func() {
		defer close(events)
		run(ctx, p, req, events)
	}()
	return events
}

func run(ctx context.Context, p *ingest.Pipeline, req Request, events chan<- Event) {
	versionID := strings.ToLower(req.Meta.VersionID)
	fail := func(stage string, err error) {
		logging.ImportError(versionID, stage, err)
		emit(ctx, events, Event{Status: StatusError, Message: err.Error()})
	}

	if err := req.Meta.Validate(); err != nil {
		fail("validate", err)
		return
	}

	emit(ctx, events, Event{Status: StatusProcessing, Message: "Starting import..."})

	// Progress percentages are forced monotonic regardless of parser
	// quirks, and parsing aborts between chapters on cancellation.
	lastPct := 0.0
	var cancelled bool
	progress := func(pct float64, label string) {
		if ctx.Err() != nil {
			cancelled = true
			return
		}
		if pct < lastPct {
			pct = lastPct
		}
		if pct > 100 {
			pct = 100
		}
		lastPct = pct
		emit(ctx, events, Event{Status: StatusProgress, Progress: pct, Message: label})
	}

	verses, err := ingest.ParseVerses(req.Kind, versionID, req.Payload, progress)
	if err != nil {
		fail("parse", err)
		return
	}
	if cancelled || ctx.Err() != nil {
		fail("parse", errors.Wrap(errors.ErrCancelled, "import cancelled"))
		return
	}
	if len(verses) == 0 {
		fail("parse", errors.NewParse(string(req.Kind), versionID, "payload contains no verses"))
		return
	}

	emit(ctx, events, Event{Status: StatusSaving, Message: "Saving to database..."})

	if _, err := p.SaveVerses(ctx, req.Meta, verses); err != nil {
		if ctx.Err() != nil {
			fail("save", errors.Wrap(errors.ErrCancelled, "import cancelled"))
			return
		}
		fail("save", err)
		return
	}

	emit(ctx, events, Event{Status: StatusComplete, Message: "Import successful!"})
}

// emit delivers an event unless the consumer is gone.
func emit(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
