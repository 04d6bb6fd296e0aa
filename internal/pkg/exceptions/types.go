package exceptions

import (
	"fmt"
	"runtime"
)

// CustomError annotates an error with the failure class the engine reacts to
// and the location it was raised from. Kind drives retry/skip decisions:
// transient errors are retried with backoff, inconsistencies degrade to a safe
// default, contract violations skip the whole scope.
type ErrorKind string

const (
	KindTransient     ErrorKind = "transient"
	KindInconsistency ErrorKind = "inconsistency"
	KindContract      ErrorKind = "contract"
)

type CustomError struct {
	Kind       ErrorKind
	DevMessage string
	Location   Location
}

type Location struct {
	File         string
	Line         int
	FunctionName string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, e.Location.File, e.Location.Line, e.Location.FunctionName)
}

// IsTransient reports whether err should be retried rather than handled.
func IsTransient(err error) bool {
	customErr, ok := err.(*CustomError)
	return ok && customErr.Kind == KindTransient
}

func IsContract(err error) bool {
	customErr, ok := err.(*CustomError)
	return ok && customErr.Kind == KindContract
}

func BuildNewCustomError(err error, kind ErrorKind, devMessage string) *CustomError {
	location := getLocation(2)
	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		Kind:       kind,
		DevMessage: devMessage,
		Location:   location,
	}
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         "unknown",
			Line:         0,
			FunctionName: "unknown",
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
