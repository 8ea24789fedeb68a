package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	ExitOK       = 0 // all scenarios passed
	ExitFailures = 1 // at least one scenario failed an expectation or assertion
	ExitError    = 2 // usage error, unreadable input, or internal failure
)

// CmdError carries an exit code alongside the error so main can map
// failures onto the documented codes without string matching.
type CmdError struct {
	Code int
	Err  error
}

func (e *CmdError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *CmdError) Unwrap() error { return e.Err }

// NewCmdError wraps err with an exit code.
func NewCmdError(code int, err error) *CmdError {
	return &CmdError{Code: code, Err: err}
}

// GetExitCode extracts the exit code from an error returned by a command.
func GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *CmdError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ExitError
}

// response is the JSON envelope emitted when --format=json is selected.
type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Formatter renders command output in either human-readable text or JSON.
type Formatter struct {
	format  string
	verbose bool
	out     io.Writer
	errOut  io.Writer
}

// NewFormatter returns a Formatter writing to stdout/stderr.
func NewFormatter(format string, verbose bool) *Formatter {
	return &Formatter{
		format:  format,
		verbose: verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// SetWriters redirects output, used by tests.
func (f *Formatter) SetWriters(out, errOut io.Writer) {
	f.out = out
	f.errOut = errOut
}

// Success emits data. In text mode the message is printed as-is; in JSON
// mode data is wrapped in a success envelope.
func (f *Formatter) Success(message string, data any) error {
	if f.format == "json" {
		resp := response{Status: "ok", Data: data}
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	if message != "" {
		fmt.Fprintln(f.out, message)
	}
	return nil
}

// Failure emits an error. Text mode writes to stderr; JSON mode emits an
// error envelope on stdout so callers can parse a single stream.
func (f *Formatter) Failure(err error) error {
	if f.format == "json" {
		resp := response{Status: "error"}
		resp.Error = &struct {
			Message string `json:"message"`
		}{Message: err.Error()}
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintf(f.errOut, "error: %v\n", err)
	return nil
}

// Verbose prints a diagnostic line to stderr when --verbose is set.
// Text only; JSON output stays machine-parseable.
func (f *Formatter) Verbose(format string, args ...any) {
	if f.verbose && f.format != "json" {
		fmt.Fprintf(f.errOut, format+"\n", args...)
	}
}

// ErrWriter exposes the error stream for callers that print directly.
func (f *Formatter) ErrWriter() io.Writer { return f.errOut }
