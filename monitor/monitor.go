// Package monitor reports job progress to the front-end.
//
// A JobMonitor is what background jobs talk to. The Reporter implements it
// on top of any Sender, so the same job code can report over a websocket,
// an in-process Broker or the progress journal.
package monitor

const (
	// TypeSupervisorEvent tags envelopes carrying supervisor events.
	TypeSupervisorEvent = "supervisor_event"

	// EventJobProgress is the event kind for progress updates.
	EventJobProgress = "job_progress"
)

// JobMonitor receives progress updates from a running job.
type JobMonitor interface {
	SendProgress(progress float64, buffer []byte)
}

// Sender delivers an envelope over some transport. Send does not report
// failure; transports log and drop what they cannot deliver.
type Sender interface {
	Send(env Envelope)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(env Envelope)

// Send calls f(env).
func (f SenderFunc) Send(env Envelope) { f(env) }

// Envelope is the outer message put on the event channel.
type Envelope struct {
	Type string        `json:"type"`
	Data ProgressEvent `json:"data"`
}

// ProgressEvent reports how far a named job has come.
type ProgressEvent struct {
	Event string        `json:"event"`
	Name  string        `json:"name"`
	State ProgressState `json:"state"`
}

// ProgressState is the payload of a ProgressEvent. A nil Buffer encodes as null.
type ProgressState struct {
	Progress float64 `json:"progress"`
	Buffer   []byte  `json:"buffer"`
}

// Reporter is a JobMonitor bound to one job name.
// It is safe for concurrent use if its Sender is.
type Reporter struct {
	sender Sender
	name   string
}

var _ JobMonitor = (*Reporter)(nil)

// NewReporter creates a reporter that sends progress for the named job.
func NewReporter(sender Sender, name string) *Reporter {
	return &Reporter{sender: sender, name: name}
}

// Name returns the job name the reporter is bound to.
func (r *Reporter) Name() string {
	return r.name
}

// SendProgress sends a job_progress event. It never fails from the
// caller's point of view.
func (r *Reporter) SendProgress(progress float64, buffer []byte) {
	r.sender.Send(NewProgressEnvelope(r.name, progress, buffer))
}

// NewProgressEnvelope builds the envelope for a progress update.
func NewProgressEnvelope(name string, progress float64, buffer []byte) Envelope {
	return Envelope{
		Type: TypeSupervisorEvent,
		Data: ProgressEvent{
			Event: EventJobProgress,
			Name:  name,
			State: ProgressState{
				Progress: progress,
				Buffer:   buffer,
			},
		},
	}
}

// Discard is a Sender that drops everything.
var Discard Sender = SenderFunc(func(Envelope) {})

// Multi fans an envelope out to several senders in order.
type Multi []Sender

// Send passes env to each non-nil sender.
func (m Multi) Send(env Envelope) {
	for _, s := range m {
		if s != nil {
			s.Send(env)
		}
	}
}
