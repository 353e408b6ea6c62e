package machine

import (
	"errors"
	"strconv"
)

// ErrInvalidArgument is returned for bad parameters to local operations.
var ErrInvalidArgument = errors.New("invalid argument")

// TransportError is a write, flush or read failure on the Transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "transport " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ChannelError means a command could not be sent or got no response.
type ChannelError struct {
	Command string
	Err     error
}

func (e *ChannelError) Error() string {
	return "send " + strconv.Quote(e.Command) + ": " + e.Err.Error()
}
func (e *ChannelError) Unwrap() error { return e.Err }

// StepError identifies the failing step of a multi-step operation.
//
// Steps before Step have already reached the device.
type StepError struct {
	Op      string
	Step    int
	Command string
	Err     error
}

func (e *StepError) Error() string {
	return e.Op + ": step " + strconv.Itoa(e.Step) + " (" + strconv.Quote(e.Command) + "): " + e.Err.Error()
}
func (e *StepError) Unwrap() error { return e.Err }

type timeoutError struct{}

func (timeoutError) Error() string   { return "read timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// ErrReadTimeout is wrapped by a TransportError when a read deadline passes
// with no complete line. The Transport stays usable and the read can be
// retried.
var ErrReadTimeout error = timeoutError{}
