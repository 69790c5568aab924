package models

import "time"

const MaxContentLength = 3000

// PublishLease is how long an unfinished publish keeps other writers off a post.
const PublishLease = 5 * time.Minute

type Post struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	Content        string     `db:"content" json:"content"`
	Topic          string     `db:"topic" json:"topic"`
	Tone           string     `db:"tone" json:"tone"`
	Status         string     `db:"status" json:"status"` // draft, scheduled, published, failed
	ScheduledAt    *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	PublishedAt    *time.Time `db:"published_at" json:"published_at,omitempty"`
	ExternalPostID *string    `db:"external_post_id" json:"external_post_id,omitempty"`
	Analytics      Analytics  `json:"analytics"`
	Version        int64      `db:"version" json:"-"`
	PublishingAt   *time.Time `db:"publish_started_at" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type Analytics struct {
	Likes       int64 `db:"likes" json:"likes"`
	Comments    int64 `db:"comments" json:"comments"`
	Shares      int64 `db:"shares" json:"shares"`
	Impressions int64 `db:"impressions" json:"impressions"`
}

// Publishing reports whether an external publish holds the post's lease at now.
func (p *Post) Publishing(now time.Time) bool {
	return p.PublishingAt != nil && now.Sub(*p.PublishingAt) < PublishLease
}

// IsPublished reports whether the post carries the full published triple.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished && p.PublishedAt != nil && p.ExternalPostID != nil
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

const (
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneInspiring    = "inspiring"
	ToneEducational  = "educational"
	TonePromotional  = "promotional"
)

const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

var (
	PostStatuses = []string{PostStatusDraft, PostStatusScheduled, PostStatusPublished, PostStatusFailed}
	Tones        = []string{ToneProfessional, ToneCasual, ToneInspiring, ToneEducational, TonePromotional}
	Lengths      = []string{LengthShort, LengthMedium, LengthLong}
)

func IsValidStatus(status string) bool {
	for _, s := range PostStatuses {
		if s == status {
			return true
		}
	}
	return false
}
