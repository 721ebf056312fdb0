package capsolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// call POSTs payload to an operation and decodes the reply into result.
// Replies carrying a non-zero errorId are decoded even on non-200 statuses so the
// caller sees the remote error. The raw body is returned for error extraction.
func (c *Client) call(ctx context.Context, key *Key, op string, payload, result any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	data, status, err := c.doer.Do(ctx, c.endpointURL(op), c.headers, body)
	if err != nil {
		c.recordAPICall(op, false, false)
		return nil, &TransportError{Op: op, Err: err}
	}

	if status == 429 {
		c.recordAPICall(op, false, true)
		if c.canSpare(key) {
			key.MarkEndpointRateLimited(op, time.Now().Add(time.Minute))
		}
		return data, &TransportError{Op: op, StatusCode: status, Err: fmt.Errorf("rate limited: %s", truncateBytes(data, 200))}
	}
	if status != 200 && remoteErrorID(data) == 0 {
		c.recordAPICall(op, false, false)
		return data, &TransportError{Op: op, StatusCode: status, Err: fmt.Errorf("%s", truncateBytes(data, 200))}
	}

	if err := json.Unmarshal(data, result); err != nil {
		c.recordAPICall(op, false, false)
		return data, &TransportError{Op: op, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.recordAPICall(op, true, false)
	return data, nil
}

// remoteErrorID returns the errorId of a JSON body, or 0.
func remoteErrorID(body []byte) int {
	var probe struct {
		ErrorID int `json:"errorId"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return 0
	}
	return probe.ErrorID
}

// CreateTask validates a task and submits it. The create call is never retried.
func (c *Client) CreateTask(ctx context.Context, task Task) (*TaskResponse, error) {
	resp, _, err := c.createTask(ctx, task, c.log)
	return resp, err
}

func (c *Client) createTask(ctx context.Context, task Task, log *slog.Logger) (*TaskResponse, *Key, error) {
	payload, err := taskPayload(task)
	if err != nil {
		return nil, nil, &ValidationError{TaskType: task.TaskType(), Field: "task", Reason: err.Error()}
	}
	known, err := validate(payload)
	if err != nil {
		return nil, nil, err
	}
	if !known {
		c.trace(log, "running unrecognized task type", slog.String("type", task.TaskType()))
	}

	key, err := c.nextKey(opCreateTask)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opCreateTask, err)
	}

	req := map[string]any{
		"clientKey": key.value,
		"appId":     c.cfg.AppID,
		"task":      payload,
	}
	var resp TaskResponse
	body, err := c.call(ctx, key, opCreateTask, req, &resp)
	if err != nil {
		key.RecordFailure()
		return nil, nil, newTaskError(opCreateTask, err, body)
	}
	if resp.ErrorID != 0 {
		c.penalize(key, opCreateTask, resp.ErrorCode)
		return nil, nil, &TaskError{Op: opCreateTask, ErrorInfo: resp.errorInfo()}
	}
	key.RecordSuccess()
	resp.key = key
	return &resp, key, nil
}

// PollResult waits for a task created with the primary API key.
// Use Await for tasks returned by CreateTask when several keys are configured.
func (c *Client) PollResult(ctx context.Context, taskID string) (Solution, error) {
	return c.poll(ctx, c.keys[0], taskID, c.log)
}

// Await waits for the task described by a CreateTask response, using the key that created it.
func (c *Client) Await(ctx context.Context, resp *TaskResponse) (Solution, error) {
	key := resp.key
	if key == nil {
		key = c.keys[0]
	}
	return c.poll(ctx, key, resp.TaskID, c.log)
}

// poll queries getTaskResult every PollInterval until the task is ready.
// Failed attempts are counted; more than MaxPollRetries of them end the loop.
func (c *Client) poll(ctx context.Context, key *Key, taskID string, log *slog.Logger) (Solution, error) {
	req := map[string]any{
		"clientKey": key.value,
		"taskId":    taskID,
	}

	var last error
	failures := 0
	wait := c.cfg.PollInterval
	for failures <= c.cfg.MaxPollRetries {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		wait = c.cfg.PollInterval

		var resp resultResponse
		body, err := c.call(ctx, key, opGetTaskResult, req, &resp)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			last = err
			if c.cfg.StrictPolling {
				wait = c.cfg.PollBackoff.Duration(failures)
			}
			log.Debug("poll attempt failed", slog.String("taskId", taskID), slog.Int("failures", failures), slog.Any("error", err))
			continue
		}

		if resp.ErrorID != 0 || resp.Status == statusFailed {
			c.penalize(key, opGetTaskResult, resp.ErrorCode)
			terr := &TaskError{Op: opGetTaskResult, ErrorInfo: ErrorInfo{Code: resp.ErrorCode, Description: resp.ErrorDescription}}
			if c.cfg.StrictPolling {
				return nil, terr
			}
			failures++
			last = terr
			log.Debug("poll attempt rejected", slog.String("taskId", taskID), slog.Int("failures", failures), slog.String("code", resp.ErrorCode))
			continue
		}

		c.trace(log, "task status", slog.String("id", taskID), slog.String("status", resp.Status))
		if resp.Status == statusReady {
			key.RecordSuccess()
			if len(resp.Solution) > 0 {
				return resp.Solution, nil
			}
			var whole Solution
			if err := json.Unmarshal(body, &whole); err != nil {
				return nil, newTaskError(opGetTaskResult, err, nil)
			}
			return whole, nil
		}
	}

	return nil, &PollExhaustedError{
		TaskID:   taskID,
		Attempts: failures,
		ErrorInfo: ErrorInfo{
			Code:        CodeUnknown,
			Description: "task result not available within the retry budget",
		},
		Last: last,
	}
}

// Balance returns the account balance in USD. It falls back to the primary key
// when the pool has no usable key, so the reply always reflects the account.
func (c *Client) Balance(ctx context.Context) (float64, error) {
	key, err := c.nextKey(opGetBalance)
	if err != nil {
		key = c.keys[0]
	}

	var resp balanceResponse
	body, err := c.call(ctx, key, opGetBalance, map[string]any{"clientKey": key.value}, &resp)
	if err != nil {
		key.RecordFailure()
		return 0, newTaskError(opGetBalance, err, body)
	}
	if resp.ErrorID != 0 {
		c.penalize(key, opGetBalance, resp.ErrorCode)
		return 0, &TaskError{Op: opGetBalance, ErrorInfo: ErrorInfo{Code: resp.ErrorCode, Description: resp.ErrorDescription}}
	}
	return float64(resp.Balance), nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
