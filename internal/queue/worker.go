package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandlePublishScheduledTask publishes a post whose schedule came due. Failures
// are never retried; the post's status already records the outcome.
func (j *Queue) HandlePublishScheduledTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishScheduledPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	err := j.ps.PublishScheduled(ctx, payload.UserID, payload.PostID, payload.ScheduledAt)
	if err != nil {
		slog.Error("scheduled publish failed", "post_id", payload.PostID, "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	return nil
}
