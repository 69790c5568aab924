package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/maheshrc27/autopost/internal/metrics"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// PublishDispatcher hands a scheduled post to a delayed worker.
type PublishDispatcher interface {
	EnqueueScheduledPublish(ctx context.Context, userID, postID string, at time.Time) error
}

type PostService interface {
	Generate(ctx context.Context, userID string, req *transfer.PostGeneration) (*models.Post, error)
	GenerateHashtags(ctx context.Context, req *transfer.HashtagGeneration) ([]string, error)
	List(ctx context.Context, userID string, q transfer.ListQuery) (*transfer.PostList, error)
	Get(ctx context.Context, userID, postID string) (*models.Post, error)
	Update(ctx context.Context, userID, postID string, req *transfer.PostUpdate) (*models.Post, error)
	Schedule(ctx context.Context, userID, postID string, at time.Time) (*models.Post, error)
	Publish(ctx context.Context, userID, postID string) (*models.Post, error)
	PublishScheduled(ctx context.Context, userID, postID string, at time.Time) error
	Delete(ctx context.Context, userID, postID string) error
	RefreshAnalytics(ctx context.Context, userID, postID string) (models.Analytics, error)
	Attempts(ctx context.Context, userID, postID string) ([]*models.PostingHistory, error)
}

type postService struct {
	pr         repository.PostRepository
	ph         repository.PostingHistoryRepository
	gen        ContentGenerator
	pub        SocialPublisher
	links      LinkReader
	dispatcher PublishDispatcher
	metrics    metrics.Recorder
	now        func() time.Time
}

// NewPostService wires the lifecycle manager. dispatcher may be nil, in which
// case scheduling only records the intended time.
func NewPostService(
	pr repository.PostRepository,
	ph repository.PostingHistoryRepository,
	gen ContentGenerator,
	pub SocialPublisher,
	links LinkReader,
	dispatcher PublishDispatcher,
	m metrics.Recorder) PostService {
	return &postService{
		pr:         pr,
		ph:         ph,
		gen:        gen,
		pub:        pub,
		links:      links,
		dispatcher: dispatcher,
		metrics:    m,
		now:        time.Now,
	}
}

func (s *postService) Generate(ctx context.Context, userID string, req *transfer.PostGeneration) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, validationError(err)
	}

	content, err := s.gen.GeneratePost(ctx, req)
	s.metrics.RecordGeneration(metrics.GenerationPost, err)
	if err != nil {
		return nil, err
	}

	id, err := utils.NewID()
	if err != nil {
		return nil, fmt.Errorf("error generating post id: %w", err)
	}

	post := &models.Post{
		ID:      id,
		UserID:  userID,
		Content: content,
		Topic:   req.Topic,
		Tone:    req.Tone,
		Status:  models.PostStatusDraft,
	}
	if err = s.pr.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	slog.Info("post generated", "post_id", post.ID, "user_id", userID)
	return post, nil
}

func (s *postService) GenerateHashtags(ctx context.Context, req *transfer.HashtagGeneration) ([]string, error) {
	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, validationError(err)
	}

	count := req.Count
	if count == 0 {
		count = transfer.DefaultHashtagCount
	}

	tags, err := s.gen.GenerateHashtags(ctx, req.Topic, count)
	s.metrics.RecordGeneration(metrics.GenerationHashtags, err)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *postService) List(ctx context.Context, userID string, q transfer.ListQuery) (*transfer.PostList, error) {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if !models.IsValidStatus(q.Status) {
		q.Status = ""
	}

	posts, err := s.pr.ListByUserID(ctx, userID, q.Status, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	total, err := s.pr.CountByUserID(ctx, userID, q.Status)
	if err != nil {
		return nil, fmt.Errorf("error counting posts: %w", err)
	}

	return &transfer.PostList{
		Posts: posts,
		Pagination: transfer.Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: int64(math.Ceil(float64(total) / float64(q.Limit))),
		},
	}, nil
}

func (s *postService) Get(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		slog.Info(ErrNotFound.Error(), "post_id", postID, "user_id", userID)
		return nil, ErrNotFound
	}
	return post, nil
}

// getMutable loads a post that may still change state.
func (s *postService) getMutable(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostStatusPublished {
		slog.Info("post already published", "post_id", postID)
		return nil, fmt.Errorf("%w: post is already published", ErrConflict)
	}
	if post.Publishing(s.now()) {
		slog.Info("post is being published", "post_id", postID)
		return nil, fmt.Errorf("%w: post is being published", ErrConflict)
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, userID, postID string, req *transfer.PostUpdate) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, validationError(err)
	}

	post, err := s.getMutable(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Topic != "" {
		post.Topic = req.Topic
	}
	if req.Tone != "" {
		post.Tone = req.Tone
	}

	updated, err := s.pr.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: post changed concurrently", ErrConflict)
	}
	return updated, nil
}

func (s *postService) Schedule(ctx context.Context, userID, postID string, at time.Time) (*models.Post, error) {
	if !at.After(s.now()) {
		slog.Info(ErrInvalidDate.Error(), "post_id", postID)
		return nil, ErrInvalidDate
	}

	post, err := s.getMutable(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	scheduled, err := s.pr.Schedule(ctx, postID, userID, post.Version, at)
	if err != nil {
		return nil, fmt.Errorf("error scheduling post: %w", err)
	}
	if scheduled == nil {
		return nil, fmt.Errorf("%w: post changed concurrently", ErrConflict)
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueScheduledPublish(ctx, userID, postID, at); err != nil {
			slog.Error("failed to enqueue scheduled publish", "post_id", postID, "error", err)
		}
	}
	return scheduled, nil
}

// Publish sends the post to LinkedIn. When the platform rejects it the post is
// persisted as failed and returned together with ErrPublishFailed.
func (s *postService) Publish(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, err := s.getMutable(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.RecordPublish(metrics.PublishConflict)
		}
		return nil, err
	}

	link, err := s.links.GetLink(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !link.Connected() || link.AccountID == "" {
		slog.Info(ErrNotLinked.Error(), "user_id", userID)
		return nil, ErrNotLinked
	}

	claimed, err := s.pr.ClaimForPublish(ctx, postID, userID, post.Version)
	if err != nil {
		return nil, fmt.Errorf("error claiming post: %w", err)
	}
	if claimed == nil {
		s.metrics.RecordPublish(metrics.PublishConflict)
		slog.Info("publish lost the claim", "post_id", postID)
		return nil, fmt.Errorf("%w: post is being published", ErrConflict)
	}

	externalID, pubErr := s.pub.Publish(ctx, link.AccessToken, claimed.Content, link.AccountID)
	s.recordAttempt(ctx, userID, postID, pubErr)

	// The platform call already happened; the outcome must be stored even if
	// the caller has gone away.
	storeCtx := context.WithoutCancel(ctx)

	if pubErr != nil {
		s.metrics.RecordPublish(metrics.PublishFailed)
		failed, err := s.pr.MarkFailed(storeCtx, postID, userID, claimed.Version)
		if err != nil {
			return nil, fmt.Errorf("error marking post failed: %w", err)
		}
		return failed, ErrPublishFailed
	}

	published, err := s.pr.MarkPublished(storeCtx, postID, userID, claimed.Version, s.now().UTC(), externalID)
	if err != nil {
		slog.Error("post published but not recorded", "post_id", postID, "external_post_id", externalID, "error", err)
		return nil, fmt.Errorf("error marking post published: %w", err)
	}
	if published == nil {
		slog.Error("post published but claim was lost", "post_id", postID, "external_post_id", externalID)
		return nil, fmt.Errorf("%w: post changed during publish", ErrConflict)
	}

	s.metrics.RecordPublish(metrics.PublishSuccess)
	slog.Info("post published", "post_id", postID, "external_post_id", externalID)
	return published, nil
}

func (s *postService) recordAttempt(ctx context.Context, userID, postID string, pubErr error) {
	attempt := &models.PostingHistory{UserID: userID, PostID: postID}
	if pubErr != nil {
		attempt.ErrorMessage = pubErr.Error()
	}
	if _, err := s.ph.Create(context.WithoutCancel(ctx), attempt); err != nil {
		slog.Error("failed to record publish attempt", "post_id", postID, "error", err)
	}
}

// PublishScheduled publishes a post for a dispatched schedule. It does nothing
// when the post was deleted, published, rescheduled or otherwise moved off the
// schedule identified by at.
func (s *postService) PublishScheduled(ctx context.Context, userID, postID string, at time.Time) error {
	post, err := s.pr.GetByID(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("error getting post: %w", err)
	}
	if post == nil || post.Status != models.PostStatusScheduled || post.ScheduledAt == nil || !post.ScheduledAt.Equal(at) {
		s.metrics.RecordPublish(metrics.PublishSkipped)
		slog.Info("skipping stale scheduled publish", "post_id", postID)
		return nil
	}

	_, err = s.Publish(ctx, userID, postID)
	return err
}

func (s *postService) Delete(ctx context.Context, userID, postID string) error {
	if _, err := s.getMutable(ctx, userID, postID); err != nil {
		return err
	}

	removed, err := s.pr.Remove(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: post changed concurrently", ErrConflict)
	}
	return nil
}

func (s *postService) RefreshAnalytics(ctx context.Context, userID, postID string) (models.Analytics, error) {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return models.Analytics{}, err
	}
	if !post.IsPublished() {
		slog.Info(ErrNotPublished.Error(), "post_id", postID)
		return models.Analytics{}, ErrNotPublished
	}

	link, err := s.links.GetLink(ctx, userID)
	if err != nil {
		return models.Analytics{}, err
	}
	if !link.Connected() {
		slog.Info(ErrNotLinked.Error(), "user_id", userID)
		return models.Analytics{}, ErrNotLinked
	}

	analytics := s.pub.FetchAnalytics(ctx, link.AccessToken, *post.ExternalPostID)

	updated, err := s.pr.UpdateAnalytics(ctx, postID, userID, analytics)
	if err != nil {
		return models.Analytics{}, fmt.Errorf("error saving analytics: %w", err)
	}
	if updated == nil {
		return models.Analytics{}, ErrNotFound
	}
	return updated.Analytics, nil
}

func (s *postService) Attempts(ctx context.Context, userID, postID string) ([]*models.PostingHistory, error) {
	if _, err := s.Get(ctx, userID, postID); err != nil {
		return nil, err
	}

	attempts, err := s.ph.ListByPostID(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing publish attempts: %w", err)
	}
	return attempts, nil
}
