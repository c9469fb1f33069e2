package eventmetrics

import "errors"

var (
	// ErrDuplicateCounter indicates two counters derived the same name during registry construction.
	ErrDuplicateCounter = errors.New("eventmetrics.duplicate_counter")
	// ErrCounterNotFound indicates no counter is registered under the derived name.
	ErrCounterNotFound = errors.New("eventmetrics.counter_not_found")
	// ErrLabelCardinality indicates a label tuple does not match the counter's declared label names.
	ErrLabelCardinality = errors.New("eventmetrics.label_cardinality")
)
