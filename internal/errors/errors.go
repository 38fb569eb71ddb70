// Package errors defines the exit-code-carrying error values used by
// the abkhazia CLI. Every failure class has its own constructor so the
// message format stays consistent across commands.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned to the shell.
const (
	ExitOK           = 0
	ExitGeneralError = 1
)

// Error is an error with an associated process exit code.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with an exit code and a message.
func New(code int, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error with an exit code, a message and a cause.
func Wrap(code int, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitGeneralError
// for any other non-nil error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ExitGeneralError
}

// MissingExecutable reports a required external tool absent from PATH.
func MissingExecutable(name, source string) error {
	return New(ExitGeneralError, fmt.Sprintf(
		"%s is not installed on your system, see %s", name, source))
}

// DownloadFailed reports that a required artifact could not be fetched.
func DownloadFailed(url string, err error) error {
	return Wrap(ExitGeneralError, fmt.Sprintf("failed to download %s", url), err)
}

// ConfigDrift reports a live configuration whose schema no longer
// matches the shipped template.
func ConfigDrift(file string, detail string) error {
	return New(ExitGeneralError, fmt.Sprintf(
		"%s is out of date with the shipped template (%s): "+
			"please merge it manually and re-run install", file, detail))
}

// UnresolvedRoot reports that no valid kaldi root directory could be
// determined from the configuration or the environment.
func UnresolvedRoot(detail string) error {
	return New(ExitGeneralError, fmt.Sprintf(
		"cannot find the kaldi distribution: %s. "+
			"Install kaldi and set kaldi-directory in abkhazia.conf "+
			"or export KALDI_PATH", detail))
}

// MissingToolkitSubpath reports an incomplete kaldi installation.
func MissingToolkitSubpath(path, remedy string) error {
	return New(ExitGeneralError, fmt.Sprintf(
		"%s not found in your kaldi installation: %s", path, remedy))
}

// ConfigError wraps a configuration read/write failure.
func ConfigError(message string, err error) error {
	return Wrap(ExitGeneralError, message, err)
}
