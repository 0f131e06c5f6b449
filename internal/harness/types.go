package harness

// Trace event types recorded during scenario execution.
const (
	EventSession = "session"
	EventDeal    = "deal"
	EventPlay    = "play"
)

// TraceEvent is one recorded step of a scenario execution.
type TraceEvent struct {
	// Type is one of the Event* constants.
	Type string `json:"type"`

	// Node and Direction locate the deal the event belongs to. Session
	// events leave both empty; play events carry the node and direction
	// of the deal they were applied to.
	Node      string `json:"node,omitempty"`
	Direction string `json:"direction,omitempty"`

	// Detail carries the event payload: record ids, karma counts, play
	// legality. Values are canonical JSON compatible.
	Detail map[string]any `json:"detail,omitempty"`

	// Seq is the logical clock value of the journaled record.
	Seq int64 `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True when every step expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains one event per session, deal, and play in order.
	// Used for trace assertions and golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddSessionTrace adds the session start event to the trace.
func (r *Result) AddSessionTrace(token, mapName string, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type: EventSession,
		Detail: map[string]any{
			"session_token": token,
			"map":           mapName,
		},
		Seq: seq,
	})
}

// AddDealTrace adds a deal event to the trace.
func (r *Result) AddDealTrace(node, direction string, detail map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      EventDeal,
		Node:      node,
		Direction: direction,
		Detail:    detail,
		Seq:       seq,
	})
}

// AddPlayTrace adds a play event to the trace.
func (r *Result) AddPlayTrace(node, direction string, detail map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      EventPlay,
		Node:      node,
		Direction: direction,
		Detail:    detail,
		Seq:       seq,
	})
}
