package audit

import "context"

// Recorder persists authentication events for telemetry. Implementations
// must never let a recording failure affect the request path.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// NopRecorder discards all events. Used when no audit database is
// configured.
type NopRecorder struct{}

// NewNopRecorder creates a Recorder that discards everything.
func NewNopRecorder() Recorder {
	return NopRecorder{}
}

func (NopRecorder) Record(_ context.Context, _ Event) error {
	return nil
}
