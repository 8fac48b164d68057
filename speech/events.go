package speech

// EventKind enumerates what a backend can report during a capture attempt.
type EventKind int

const (
	// EventStarted means the backend is listening.
	EventStarted EventKind = iota
	// EventResult carries the finished transcript. At most one per attempt.
	EventResult
	// EventError carries a classified failure. At most one per attempt.
	EventError
	// EventEnded is always the last event of an attempt.
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is one occurrence in a capture attempt, delivered in emission order.
type Event struct {
	Kind       EventKind
	Transcript Transcript
	Err        *CaptureError
}
