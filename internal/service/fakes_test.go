package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/stretchr/testify/mock"
)

// memPostRepo mirrors the conditional updates of the SQL repository in memory.
type memPostRepo struct {
	mu      sync.Mutex
	posts   map[string]*models.Post
	created time.Time
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{
		posts:   map[string]*models.Post{},
		created: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memPostRepo) put(p *models.Post) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = r.created.Add(time.Minute)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.created
	}
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.posts[p.ID] = &cp
	return p
}

func (r *memPostRepo) stored(id string) models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.posts[id]
}

func (r *memPostRepo) Create(ctx context.Context, post *models.Post) error {
	r.put(post)
	return nil
}

func (r *memPostRepo) GetByID(ctx context.Context, id, userID string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) filter(userID, status string) []*models.Post {
	var out []*models.Post
	for _, p := range r.posts {
		if p.UserID == userID && (status == "" || p.Status == status) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memPostRepo) ListByUserID(ctx context.Context, userID, status string, limit, offset int) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filter(userID, status)
	if offset >= len(all) {
		return []*models.Post{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memPostRepo) CountByUserID(ctx context.Context, userID, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filter(userID, status))), nil
}

func leaseFree(p *models.Post) bool {
	return !p.Publishing(time.Now())
}

// mutate applies fn when the guard matches and returns a copy of the result.
func (r *memPostRepo) mutate(id, userID string, guard func(*models.Post) bool, fn func(*models.Post)) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.UserID != userID || !guard(p) {
		return nil
	}
	fn(p)
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp
}

func editable(version int64) func(*models.Post) bool {
	return func(p *models.Post) bool {
		return p.Version == version && p.Status != models.PostStatusPublished && leaseFree(p)
	}
}

func (r *memPostRepo) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	return r.mutate(post.ID, post.UserID, editable(post.Version), func(p *models.Post) {
		p.Content, p.Topic, p.Tone = post.Content, post.Topic, post.Tone
		p.Version++
	}), nil
}

func (r *memPostRepo) Schedule(ctx context.Context, id, userID string, version int64, at time.Time) (*models.Post, error) {
	return r.mutate(id, userID, editable(version), func(p *models.Post) {
		p.Status = models.PostStatusScheduled
		p.ScheduledAt = &at
		p.Version++
	}), nil
}

func (r *memPostRepo) ClaimForPublish(ctx context.Context, id, userID string, version int64) (*models.Post, error) {
	return r.mutate(id, userID, editable(version), func(p *models.Post) {
		now := time.Now()
		p.PublishingAt = &now
		p.Version++
	}), nil
}

func (r *memPostRepo) claimed(version int64) func(*models.Post) bool {
	return func(p *models.Post) bool {
		return p.Version == version && p.Status != models.PostStatusPublished
	}
}

func (r *memPostRepo) MarkPublished(ctx context.Context, id, userID string, version int64, at time.Time, externalID string) (*models.Post, error) {
	return r.mutate(id, userID, r.claimed(version), func(p *models.Post) {
		p.Status = models.PostStatusPublished
		p.PublishedAt = &at
		p.ExternalPostID = &externalID
		p.PublishingAt = nil
		p.Version++
	}), nil
}

func (r *memPostRepo) MarkFailed(ctx context.Context, id, userID string, version int64) (*models.Post, error) {
	return r.mutate(id, userID, r.claimed(version), func(p *models.Post) {
		p.Status = models.PostStatusFailed
		p.PublishingAt = nil
		p.Version++
	}), nil
}

func (r *memPostRepo) UpdateAnalytics(ctx context.Context, id, userID string, a models.Analytics) (*models.Post, error) {
	published := func(p *models.Post) bool { return p.Status == models.PostStatusPublished }
	return r.mutate(id, userID, published, func(p *models.Post) {
		p.Analytics = a
	}), nil
}

func (r *memPostRepo) Remove(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.UserID != userID || p.Status == models.PostStatusPublished || !leaseFree(p) {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}

type memHistoryRepo struct {
	mu       sync.Mutex
	attempts []*models.PostingHistory
}

func (r *memHistoryRepo) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ph.ID = int64(len(r.attempts) + 1)
	ph.CreatedAt = time.Now()
	r.attempts = append(r.attempts, ph)
	return ph.ID, nil
}

func (r *memHistoryRepo) ListByPostID(ctx context.Context, postID, userID string) ([]*models.PostingHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.PostingHistory{}
	for i := len(r.attempts) - 1; i >= 0; i-- {
		if a := r.attempts[i]; a.PostID == postID && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GeneratePost(ctx context.Context, req *transfer.PostGeneration) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateHashtags(ctx context.Context, topic string, count int) ([]string, error) {
	args := m.Called(ctx, topic, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// fakePublisher counts publish calls; analytics always fail when failAnalytics is set.
type fakePublisher struct {
	publishCalls  atomic.Int32
	publishDelay  time.Duration
	publishErr    error
	analytics     models.Analytics
	failAnalytics bool

	token   *transfer.LinkedInToken
	profile *transfer.LinkedInProfile
	authErr error
}

func (f *fakePublisher) AuthorizationURL(state string) string {
	return "https://www.linkedin.com/oauth/v2/authorization?state=" + state
}

func (f *fakePublisher) ExchangeCode(ctx context.Context, code string) (*transfer.LinkedInToken, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.token, nil
}

func (f *fakePublisher) FetchProfile(ctx context.Context, accessToken string) (*transfer.LinkedInProfile, error) {
	if f.profile == nil {
		return nil, ErrProfileFetch
	}
	return f.profile, nil
}

func (f *fakePublisher) Publish(ctx context.Context, accessToken, content, authorID string) (string, error) {
	n := f.publishCalls.Add(1)
	if f.publishDelay > 0 {
		time.Sleep(f.publishDelay)
	}
	if f.publishErr != nil {
		return "", f.publishErr
	}
	if n > 1 {
		return "urn:li:share:duplicate", nil
	}
	return "urn:li:share:1", nil
}

func (f *fakePublisher) FetchAnalytics(ctx context.Context, accessToken, externalPostID string) models.Analytics {
	if f.failAnalytics {
		return models.Analytics{}
	}
	return f.analytics
}

func (f *fakePublisher) RefreshToken(ctx context.Context, refreshToken string) (*transfer.LinkedInToken, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.token, nil
}

type fakeLinks struct {
	account *models.SocialAccount
	err     error
}

func (f *fakeLinks) GetLink(ctx context.Context, userID string) (*models.SocialAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.account == nil || f.account.UserID != userID {
		return nil, nil
	}
	return f.account, nil
}

type dispatchCall struct {
	userID, postID string
	at             time.Time
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
	err   error
}

func (f *fakeDispatcher) EnqueueScheduledPublish(ctx context.Context, userID, postID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatchCall{userID: userID, postID: postID, at: at})
	return f.err
}

var errPlatformDown = errors.New("linkedin returned status 500")
