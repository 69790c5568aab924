package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher delays publishing of scheduled posts until their time comes.
type Dispatcher struct {
	client Enqueuer
}

func NewDispatcher(client Enqueuer) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) EnqueueScheduledPublish(ctx context.Context, userID, postID string, at time.Time) error {
	payload := PublishScheduledPayload{UserID: userID, PostID: postID, ScheduledAt: at}
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishScheduled, taskPayload)

	info, err := d.client.EnqueueContext(ctx, task, asynq.ProcessAt(at), asynq.MaxRetry(0))
	if err != nil {
		return err
	}

	slog.Info("scheduled publish enqueued", "post_id", postID, "task_id", info.ID, "process_at", at)
	return nil
}
