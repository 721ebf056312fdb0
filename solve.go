package capsolver

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Solve submits a task and returns its solution. Asynchronous task types are
// polled until ready; synchronous ones (image and classification tasks) return
// the createTask solution directly.
func (c *Client) Solve(ctx context.Context, task Task) (Solution, error) {
	return c.run(ctx, task, mustPoll(task.TaskType()))
}

// SolveVariant builds a task from the variant table (see Variants) and solves it.
// Missing optional parameters take their table defaults.
func (c *Client) SolveVariant(ctx context.Context, name string, args map[string]any) (Solution, error) {
	task, poll, err := buildVariant(name, args)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, task, poll)
}

// RunTask solves an arbitrary task record, including types this package does not know.
func (c *Client) RunTask(ctx context.Context, task CustomTask, poll bool) (Solution, error) {
	if task.TaskType() == "" {
		return nil, &ValidationError{
			Field:  "type",
			Kind:   KindString,
			Reason: `is required, e.g. {"type": "AntiTurnstileTaskProxyLess", ...}`,
		}
	}
	return c.run(ctx, task, poll)
}

func (c *Client) run(ctx context.Context, task Task, poll bool) (Solution, error) {
	log := c.log.With(slog.String("call", uuid.NewString()), slog.String("type", task.TaskType()))

	resp, key, err := c.createTask(ctx, task, log)
	if err != nil {
		return nil, err
	}
	if !poll {
		return resp.Solution, nil
	}
	if resp.TaskID == "" {
		if resp.Status == statusReady && len(resp.Solution) > 0 {
			return resp.Solution, nil
		}
		return nil, &TaskError{Op: opCreateTask, ErrorInfo: ErrorInfo{
			Code:        "ERROR_EMPTY_TASK_ID",
			Description: "createTask returned no taskId",
		}}
	}

	log.Debug("captcha task created", slog.String("taskId", resp.TaskID))
	sol, err := c.poll(ctx, key, resp.TaskID, log)
	if err != nil {
		log.Debug("captcha task failed", slog.String("taskId", resp.TaskID), slog.Any("error", err))
		return nil, err
	}
	log.Debug("captcha solved", slog.String("taskId", resp.TaskID))
	return sol, nil
}
