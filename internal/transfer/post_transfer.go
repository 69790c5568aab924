package transfer

import (
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/maheshrc27/autopost/internal/models"
)

const (
	DefaultHashtagCount = 5
	MaxHashtagCount     = 30
)

type PostGeneration struct {
	Topic           string `json:"topic"`
	Tone            string `json:"tone"`
	Length          string `json:"length"`
	IncludeHashtags bool   `json:"include_hashtags"`
	IncludeEmojis   bool   `json:"include_emojis"`
	TargetAudience  string `json:"target_audience,omitempty"`
}

func (b PostGeneration) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Topic, v.Required, v.Length(3, 200)),
		v.Field(&b.Tone, v.Required, v.In(anyOf(models.Tones)...)),
		v.Field(&b.Length, v.Required, v.In(anyOf(models.Lengths)...)),
		v.Field(&b.TargetAudience, v.Length(0, 100)),
	)
}

type HashtagGeneration struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

func (b HashtagGeneration) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Topic, v.Required, v.Length(3, 200)),
		v.Field(&b.Count, v.Min(0), v.Max(MaxHashtagCount)),
	)
}

// PostUpdate carries optional edits; empty fields keep the stored value.
type PostUpdate struct {
	Content string `json:"content"`
	Topic   string `json:"topic"`
	Tone    string `json:"tone"`
}

func (b PostUpdate) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Content, v.RuneLength(0, models.MaxContentLength)),
		v.Field(&b.Topic, v.Length(0, 200)),
		v.Field(&b.Tone, v.In(anyOf(models.Tones)...)),
	)
}

type PostSchedule struct {
	PostID      string    `json:"post_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (b PostSchedule) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.PostID, v.Required),
		v.Field(&b.ScheduledAt, v.Required),
	)
}

type ListQuery struct {
	Page   int
	Limit  int
	Status string
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type PostList struct {
	Posts      []*models.Post `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

func anyOf(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, s := range values {
		out[i] = s
	}
	return out
}
