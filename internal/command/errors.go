package command

import "fmt"

// ProtocolError is a protocol-level command error: unknown command,
// insufficient arguments, unsupported option, non-numeric PX value. It
// terminates the connection rather than producing a RESP error reply.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return e.Msg }

func protocolErrorf(format string, args ...any) error {
	return &ProtocolError{Msg: fmt.Sprintf(format, args...)}
}
