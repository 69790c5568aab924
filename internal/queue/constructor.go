package queue

import (
	"time"

	"github.com/maheshrc27/autopost/internal/service"
)

type Queue struct {
	ps service.PostService
}

func NewQueue(ps service.PostService) *Queue {
	return &Queue{
		ps: ps,
	}
}

const TaskTypePublishScheduled = "post:publish_scheduled"

type PublishScheduledPayload struct {
	UserID      string    `json:"user_id"`
	PostID      string    `json:"post_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}
