package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the command ran but was refused (gate locked, bad credentials)
	ExitCommandError = 2 // bad arguments or an unusable backend
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that are not an *ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the envelope written in json format.
type Response struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *ErrorDTO `json:"error,omitempty"`
}

type ErrorDTO struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Result is the payload of a mutation command. Applied is false when the
// store silently ignored the call.
type Result struct {
	Operation string `json:"operation"`
	Applied   bool   `json:"applied"`
	Value     any    `json:"value,omitempty"`
}

type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Success writes data as a json envelope, or text when the format is text.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Mutation reports the outcome of a store mutator.
func (f *OutputFormatter) Mutation(op string, applied bool, value any, text string) error {
	if !applied {
		text = "nothing changed"
	}
	return f.Success(Result{Operation: op, Applied: applied, Value: value}, text)
}

func (f *OutputFormatter) Error(err error) {
	code := GetExitCode(err)
	if f.Format == "json" {
		json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ErrorDTO{Code: code, Message: err.Error()},
		})
		return
	}
	fmt.Fprintf(f.GetErrWriter(), "Error: %v\n", err)
}

// VerboseLog writes to ErrWriter only in verbose mode so json output stays clean.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
