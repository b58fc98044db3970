package sema

import (
	"errors"
	"fmt"

	"opcheck/internal/diag"
	"opcheck/internal/source"
)

// ErrOperandUnresolved is returned when an operand is already erroneous.
// Its diagnostic was reported when the operand failed, so nothing new is
// reported for the enclosing operator.
var ErrOperandUnresolved = errors.New("operand already reported")

// OpError describes a rejected operator. The matching diagnostic has been
// reported through the checker's reporter when an OpError is returned.
type OpError struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

// CodeOf extracts the diagnostic code from err, or 0 when err is not an
// *OpError.
func CodeOf(err error) diag.Code {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Code
	}
	return 0
}
