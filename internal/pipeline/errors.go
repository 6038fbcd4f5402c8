package pipeline

import "fmt"

// SemanticRejectionError means the model explicitly declared the input is
// not a valid transaction. It is a caller problem (4xx-class), never a
// system failure, and must not trigger retries of the gateway.
type SemanticRejectionError struct {
	Reason string
}

func (e *SemanticRejectionError) Error() string {
	return fmt.Sprintf("model rejected input: %s", e.Reason)
}

// ExtractionError means the raw model reply carried no parseable
// structured payload. Raw holds the offending text for diagnostics.
type ExtractionError struct {
	Reason string
	Raw    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract reply: %s", e.Reason)
}
