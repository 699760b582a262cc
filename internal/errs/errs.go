package errs

import "errors"

// Error pairs a short message meant for the person at the keyboard with the
// technical cause. Error() reports the cause when there is one.
type Error struct {
	Err    error
	Reason string
}

// New returns an Error that has a reason and no cause.
func New(reason string) Error {
	return Error{Reason: reason}
}

func Wrap(err error, reason string) Error {
	return Error{Err: err, Reason: reason}
}

func (e Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func (e Error) Unwrap() error {
	return e.Err
}

// Reason returns the user-facing text of err, or its plain message when err
// carries no reason.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var e Error
	if errors.As(err, &e) && e.Reason != "" {
		return e.Reason
	}
	return err.Error()
}

// Detail returns the technical cause of err, or "" when there is nothing
// beyond the reason.
func Detail(err error) string {
	var e Error
	if errors.As(err, &e) {
		if e.Err == nil {
			return ""
		}
		return e.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
