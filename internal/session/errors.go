package session

import "fmt"

// PanicError carries a panic recovered while running a request on the loop.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("session request panicked: %v", e.Value)
}
