package cli

import (
	"errors"
	"fmt"
)

// Exit codes for mdfmt.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates --check found unformatted files or some files
	// could not be formatted.
	ExitFailure = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrUnformatted is returned by format --check when files would change.
	ErrUnformatted = errors.New("files are not formatted")

	// ErrFormatFailed is returned when one or more files could not be formatted.
	ErrFormatFailed = errors.New("some files could not be formatted")
)

// ExitError attaches a process exit code to an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

func usageErrorf(format string, args ...any) error {
	return withCode(ExitInvalidUsage, fmt.Errorf(format, args...))
}

// ExitCode maps an error returned by the root command to an exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if errors.Is(err, ErrUnformatted) || errors.Is(err, ErrFormatFailed) {
		return ExitFailure
	}

	return ExitInternalError
}

// Silent reports whether err is only an exit status signal that needs no
// log line of its own.
func Silent(err error) bool {
	return errors.Is(err, ErrUnformatted)
}
