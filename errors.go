package pathviz

import "errors"

var (
	// ErrInvalidConfig is returned before any generation when a Config is unusable.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrEmptyOpenSet is returned by a Strategy asked to select from no cells.
	ErrEmptyOpenSet = errors.New("open set is empty")

	// ErrNoPath is returned by Search when the open set runs out before the goal.
	ErrNoPath = errors.New("no path found")

	// ErrInconsistentPredecessors means the predecessor links do not lead back to
	// the start within N² links. The run is aborted.
	ErrInconsistentPredecessors = errors.New("inconsistent predecessor links")
)
