// Package worker runs rate synchronization as asynq tasks, on a daily schedule or on demand.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"rateservice/internal/service"
)

// TaskTypeSyncRates is the Asynq task type for rate sync jobs.
const TaskTypeSyncRates = "rates:sync"

// ErrSyncAlreadyQueued is returned when an identical sync task is already queued or running.
var ErrSyncAlreadyQueued = errors.New("a sync is already queued")

// SyncPayload is the payload structure for rate sync Asynq tasks.
type SyncPayload struct {
	Trigger service.Trigger `json:"trigger"`
}

// NewSyncTask creates an Asynq Task for a sync run. Sync tasks are never retried:
// a failed run means the fallback data could not be built, and the next
// scheduled run is the retry.
func NewSyncTask(trigger service.Trigger, timeout time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSyncRates, payload,
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
		asynq.Unique(timeout),
	), nil
}

// NewSyncRatesHandler returns a function to handle rate sync tasks.
func NewSyncRatesHandler(svc service.SyncServiceInterface, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SyncPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return nil
		}
		if payload.Trigger == "" {
			payload.Trigger = service.TriggerScheduled
		}

		res, err := svc.RunSync(ctx, payload.Trigger)
		if err != nil {
			logger.Errorw("Task processing failed", "type", t.Type(), "trigger", payload.Trigger, "error", err)
			return fmt.Errorf("rate sync: %w: %w", err, asynq.SkipRetry)
		}

		logger.Infow("Task completed",
			"type", t.Type(),
			"trigger", payload.Trigger,
			"source", res.Source,
			"persisted", res.Persisted,
			"failed", res.Failed,
		)
		return nil
	}
}

// AsynqEnqueuer enqueues on-demand sync tasks.
type AsynqEnqueuer struct {
	client  *asynq.Client
	timeout time.Duration
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer with the given client and task timeout duration.
func NewAsynqEnqueuer(client *asynq.Client, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:  client,
		timeout: timeout,
	}
}

// EnqueueSync enqueues a sync task and returns its id.
func (e *AsynqEnqueuer) EnqueueSync(ctx context.Context, trigger service.Trigger) (string, error) {
	task, err := NewSyncTask(trigger, e.timeout)
	if err != nil {
		return "", err
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return "", ErrSyncAlreadyQueued
	}
	if err != nil {
		return "", fmt.Errorf("enqueue sync task: %w", err)
	}
	return info.ID, nil
}
