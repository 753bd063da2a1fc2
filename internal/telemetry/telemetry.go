// Package telemetry provides a JSONL event stream recording what modmap
// did with each document: every load verdict, watch-triggered reload,
// rendered bundle, and service start or stop is written as one structured
// JSON line, making validation runs auditable after the fact.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/junyeong-ai/modmap/schema"
)

// Event kinds identify the type of telemetry event.
const (
	KindLoadAccepted = "load_accepted"
	KindLoadRejected = "load_rejected"
	KindWatchChange  = "watch_change"
	KindRender       = "render"
	KindServeStart   = "serve_start"
	KindServeStop    = "serve_stop"
)

// Event represents a single telemetry record. Each event carries a timestamp,
// a kind tag, and optional context identifiers (source, document kind) along
// with arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source,omitempty"`
	Doc       string    `json:"doc,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Verdict is the Data payload of load events.
type Verdict struct {
	SchemaVersion string `json:"schema_version,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty"`
	Error         string `json:"error,omitempty"`
}

// LoadEvent builds the event for one registry load of source. A nil err
// yields KindLoadAccepted; anything else yields KindLoadRejected with the
// error's category.
func LoadEvent(source string, doc schema.DocumentKind, schemaVersion string, err error) Event {
	evt := Event{
		Timestamp: time.Now().UTC(),
		Kind:      KindLoadAccepted,
		Source:    source,
		Doc:       string(doc),
		Data:      Verdict{SchemaVersion: schemaVersion},
	}
	if err != nil {
		evt.Kind = KindLoadRejected
		evt.Data = Verdict{ErrorKind: string(schema.KindOf(err)), Error: err.Error()}
	}
	return evt
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
// An empty path returns a nil Emitter, which discards events.
func NewEmitter(path string) (*Emitter, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event to the JSONL file. It is safe for concurrent use.
// Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
