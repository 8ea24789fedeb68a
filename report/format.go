package report

import (
	"bytes"
	"fmt"
)

// Format renders r in the shape the Go runtime uses for an unrecovered
// panic:
//
//	panic: <value>
//
//	goroutine N [running]:
//	<frames>
//
// The stack is emitted verbatim; a trailing newline is guaranteed so
// consecutive reports do not run together.
func Format(r *Report) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "panic: %v\n", r.Value)
	if len(r.Stack) > 0 {
		buf.WriteByte('\n')
		buf.Write(r.Stack)
		if r.Stack[len(r.Stack)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}
