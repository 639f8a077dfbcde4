package sensibo

import (
	"fmt"
)

// TransportError is returned when the request never produced a readable
// response: dns, connect, timeout, truncated body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sensibo %s: transport: %s", e.Op, e.Err.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteStatusError is returned when a response arrived but the vendor did not
// report "success", or the body could not be decoded. HTTPStatus is
// informational, the status field decides.
type RemoteStatusError struct {
	Op         string
	Status     string
	HTTPStatus int
	Reason     string
}

func (e *RemoteStatusError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("sensibo %s: status %q (http %d)", e.Op, e.Status, e.HTTPStatus)
	}
	return fmt.Sprintf("sensibo %s: status %q (http %d): %s", e.Op, e.Status, e.HTTPStatus, e.Reason)
}
