package pipeline

// State tracks one chart entry through the pipeline. A failure at any stage
// moves only that entry to StateFailed.
type State int

const (
	StatePending State = iota
	StateFetched
	StateTransformed
	StateRendered
	StateAssembled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFetched:
		return "fetched"
	case StateTransformed:
		return "transformed"
	case StateRendered:
		return "rendered"
	case StateAssembled:
		return "assembled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
