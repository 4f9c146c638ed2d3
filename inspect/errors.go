package inspect

import "fmt"

// InspectError describes a configuration or wiring failure in the inspect
// package. Decisions are never reported as errors; see Decision.
type InspectError struct {
	// Message describes what went wrong.
	Message string

	// Code is a stable machine-readable identifier, e.g. "NIL_OBSERVER".
	Code string
}

// Error implements the error interface.
func (e *InspectError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("inspect: %s (%s)", e.Message, e.Code)
	}
	return "inspect: " + e.Message
}
