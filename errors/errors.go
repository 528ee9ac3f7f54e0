package errors

import (
	"errors"
	"fmt"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrNotIdentified    = fmt.Errorf("connection has not joined")
	ErrUnknownUser      = fmt.Errorf("no presence entry for user")
	ErrSnapshotNotFound = fmt.Errorf("no history snapshot stored")
)

// IsProtocolViolation reports whether err marks a client event that
// arrived in a state where it has no meaning (chat before join, typing
// for an unknown user). Such events are dropped and the connection
// stays open.
func IsProtocolViolation(err error) bool {
	return errors.Is(err, ErrNotIdentified) || errors.Is(err, ErrUnknownUser)
}
