package bus

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURI = errors.New("invalid actor uri")
	ErrDecode     = errors.New("decode message")
)

// PanicError is the terminal error of a bus whose actor (or predicate)
// panicked during dispatch.
type PanicError struct {
	Actor     string
	Recovered any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("actor %s panicked: %v", e.Actor, e.Recovered)
}
