package capsolver

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Task is a captcha job. The concrete type decides the remote "type" tag.
type Task interface {
	TaskType() string
}

// CustomTask is a raw task record for remote task types this package has no struct for.
// It must contain a non-empty "type" string.
type CustomTask map[string]any

// TaskType implements Task.
func (t CustomTask) TaskType() string {
	s, _ := t["type"].(string)
	return s
}

// Solution is the opaque payload returned by the service once a task is solved.
type Solution map[string]any

// Token returns the first non-empty token-like field of the solution.
func (s Solution) Token() string {
	for _, k := range []string{"token", "gRecaptchaResponse", "text"} {
		if v, ok := s[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// ErrorInfo is an error code plus human-readable description.
type ErrorInfo struct {
	Code        string `json:"errorCode"`
	Description string `json:"errorDescription"`
}

// TaskResponse is the decoded reply of createTask.
type TaskResponse struct {
	ErrorID          int      `json:"errorId"`
	ErrorCode        string   `json:"errorCode,omitempty"`
	ErrorDescription string   `json:"errorDescription,omitempty"`
	TaskID           string   `json:"taskId,omitempty"`
	Status           string   `json:"status,omitempty"`
	Solution         Solution `json:"solution,omitempty"`

	key *Key
}

// errorInfo returns the remote error as ErrorInfo.
func (r *TaskResponse) errorInfo() ErrorInfo {
	return ErrorInfo{Code: r.ErrorCode, Description: r.ErrorDescription}
}

// resultResponse is the decoded reply of getTaskResult.
type resultResponse struct {
	ErrorID          int      `json:"errorId"`
	ErrorCode        string   `json:"errorCode"`
	ErrorDescription string   `json:"errorDescription"`
	Status           string   `json:"status"`
	Solution         Solution `json:"solution"`
}

// balanceResponse is the decoded reply of getBalance.
type balanceResponse struct {
	ErrorID          int       `json:"errorId"`
	ErrorCode        string    `json:"errorCode"`
	ErrorDescription string    `json:"errorDescription"`
	Balance          flexFloat `json:"balance"`
}

// flexFloat accepts both 12.34 and "12.34".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// taskPayload converts a task to its wire form: "type" plus every non-empty field.
func taskPayload(t Task) (map[string]any, error) {
	if ct, ok := t.(CustomTask); ok {
		out := make(map[string]any, len(ct))
		for k, v := range ct {
			out[k] = v
		}
		return out, nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	out["type"] = t.TaskType()
	return out, nil
}
