package capsolver

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoAPIKey is returned by NewClient when no API key is configured.
	ErrNoAPIKey = errors.New("capsolver: no API key configured")

	// ErrNoUsableKey is returned when every configured key is deactivated or rate limited.
	ErrNoUsableKey = errors.New("capsolver: no usable API key")

	// ErrUnknownVariant is returned by SolveVariant for names missing from the task table.
	ErrUnknownVariant = errors.New("capsolver: unknown task variant")
)

// CodeUnknown is the code carried by PollExhaustedError.
const CodeUnknown = "unknown"

// ValidationError is a missing or malformed task field, raised before any network call.
type ValidationError struct {
	TaskType string
	Field    string
	Kind     Kind
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.TaskType == "" {
		return fmt.Sprintf("capsolver: invalid task: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("capsolver: invalid %s task: %s %s", e.TaskType, e.Field, e.Reason)
}

// TaskError is an error reported by the service, or a transport failure on createTask.
type TaskError struct {
	Op string // createTask, getTaskResult, getBalance
	ErrorInfo
	Err error
}

func (e *TaskError) Error() string {
	msg := fmt.Sprintf("capsolver %s failed: %s", e.Op, e.Code)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

func (e *TaskError) Unwrap() error { return e.Err }

// PollExhaustedError means the retry budget ran out before the task was ready.
type PollExhaustedError struct {
	TaskID   string
	Attempts int
	ErrorInfo
	Last error
}

func (e *PollExhaustedError) Error() string {
	return fmt.Sprintf("capsolver: task %s not ready after %d failed attempts: %s", e.TaskID, e.Attempts, e.Code)
}

func (e *PollExhaustedError) Unwrap() error { return e.Last }

// TransportError is a network failure or an unexpected HTTP status.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("capsolver %s HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("capsolver %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// newTaskError builds a TaskError from a failed request. Transport failures with a
// JSON error body keep the remote code, otherwise the transport message becomes the code.
func newTaskError(op string, err error, body []byte) *TaskError {
	var info ErrorInfo
	if len(body) > 0 && json.Unmarshal(body, &info) == nil && info.Code != "" {
		return &TaskError{Op: op, ErrorInfo: info, Err: err}
	}
	return &TaskError{Op: op, ErrorInfo: ErrorInfo{Code: err.Error()}, Err: err}
}

// errorClass groups remote error codes by how the key pool reacts to them.
type errorClass int

const (
	errNone        errorClass = iota
	errKeyDenied              // ERROR_KEY_DENIED_ACCESS
	errKeyBlocked             // ERROR_KEY_TEMP_BLOCKED, ERROR_IP_BANNED, ERROR_ZERO_BALANCE
	errRateLimited            // ERROR_RATE_LIMIT
	errTaskFatal              // the task itself cannot succeed
)

// classifyCode maps a remote error code to its class.
func classifyCode(code string) errorClass {
	switch code {
	case "":
		return errNone
	case "ERROR_KEY_DENIED_ACCESS":
		return errKeyDenied
	case "ERROR_KEY_TEMP_BLOCKED", "ERROR_IP_BANNED", "ERROR_ZERO_BALANCE":
		return errKeyBlocked
	case "ERROR_RATE_LIMIT":
		return errRateLimited
	case "ERROR_TASKID_INVALID", "ERROR_TASK_TIMEOUT", "ERROR_CAPTCHA_UNSOLVABLE",
		"ERROR_INVALID_TASK_DATA", "ERROR_TASK_NOT_SUPPORTED", "ERROR_UNKNOWN_QUESTION":
		return errTaskFatal
	}
	return errNone
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorCode returns the remote code carried by err, or "" when it has none.
func ErrorCode(err error) string {
	var pe *PollExhaustedError
	if errors.As(err, &pe) {
		return pe.Code
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
