package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/metrics"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

const (
	profileLocale            = "en_US"
	restliProtocolVersion    = "2.0.0"
	defaultLinkedInExpiresIn = 60 * 24 * 60 * 60
)

var linkedInScopes = []string{"r_liteprofile", "r_emailaddress", "w_member_social"}

// SocialPublisher is the LinkedIn client: OAuth, profile, share creation and engagement reads.
type SocialPublisher interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*transfer.LinkedInToken, error)
	FetchProfile(ctx context.Context, accessToken string) (*transfer.LinkedInProfile, error)
	Publish(ctx context.Context, accessToken, content, authorID string) (string, error)
	FetchAnalytics(ctx context.Context, accessToken, externalPostID string) models.Analytics
	RefreshToken(ctx context.Context, refreshToken string) (*transfer.LinkedInToken, error)
}

type linkedInService struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	client     *resty.Client
	metrics    metrics.Recorder
}

func NewLinkedInService(cfg config.LinkedIn, timeout time.Duration, m metrics.Recorder) SocialPublisher {
	endpoint := linkedin.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	httpClient := &http.Client{Timeout: timeout}

	return &linkedInService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       linkedInScopes,
			Endpoint:     endpoint,
		},
		httpClient: httpClient,
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		metrics: m,
	}
}

func (s *linkedInService) AuthorizationURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

func (s *linkedInService) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

func (s *linkedInService) ExchangeCode(ctx context.Context, code string) (*transfer.LinkedInToken, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return nil, ErrAuthFailed
	}

	start := time.Now()
	token, err := s.oauth.Exchange(s.oauthContext(ctx), code)
	s.metrics.RecordExternalCall("linkedin", "exchange_code", time.Since(start), err)
	if err != nil {
		slog.Error(err.Error())
		return nil, ErrAuthFailed
	}
	return toLinkedInToken(token), nil
}

func (s *linkedInService) RefreshToken(ctx context.Context, refreshToken string) (*transfer.LinkedInToken, error) {
	start := time.Now()
	token, err := s.oauth.TokenSource(s.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	s.metrics.RecordExternalCall("linkedin", "refresh_token", time.Since(start), err)
	if err != nil {
		slog.Error(err.Error())
		return nil, ErrAuthFailed
	}
	return toLinkedInToken(token), nil
}

func toLinkedInToken(token *oauth2.Token) *transfer.LinkedInToken {
	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = GetExpiresAt(defaultLinkedInExpiresIn)
	}
	return &transfer.LinkedInToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

func (s *linkedInService) FetchProfile(ctx context.Context, accessToken string) (*transfer.LinkedInProfile, error) {
	var (
		result transfer.LinkedInProfileResponse
		apiErr transfer.LinkedInErrorResponse
	)

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&result).
		SetError(&apiErr).
		Get("/people/~:(id,firstName,lastName,profilePicture(displayImage~:playableStreams))")
	err = responseError(resp, err, &apiErr)
	s.metrics.RecordExternalCall("linkedin", "fetch_profile", time.Since(start), err)
	if err != nil {
		slog.Error(err.Error())
		return nil, ErrProfileFetch
	}
	if result.ID == "" {
		slog.Error("linkedin profile response has no id")
		return nil, ErrProfileFetch
	}

	profile := &transfer.LinkedInProfile{
		ID:        result.ID,
		FirstName: result.FirstName.Localized[profileLocale],
		LastName:  result.LastName.Localized[profileLocale],
	}
	if pic := result.ProfilePicture; pic != nil && len(pic.DisplayImage.Elements) > 0 {
		if ids := pic.DisplayImage.Elements[0].Identifiers; len(ids) > 0 {
			profile.PictureURL = ids[0].Identifier
		}
	}
	return profile, nil
}

func (s *linkedInService) Publish(ctx context.Context, accessToken, content, authorID string) (string, error) {
	body := transfer.UGCPostRequest{
		Author:         "urn:li:person:" + authorID,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]transfer.ShareContent{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    transfer.ShareCommentary{Text: content},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	var (
		result transfer.UGCPostResponse
		apiErr transfer.LinkedInErrorResponse
	)

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("X-Restli-Protocol-Version", restliProtocolVersion).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/ugcPosts")
	err = responseError(resp, err, &apiErr)
	s.metrics.RecordExternalCall("linkedin", "publish", time.Since(start), err)
	if err != nil {
		slog.Error(err.Error(), "author_id", authorID)
		return "", fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	id := result.ID
	if id == "" {
		id = resp.Header().Get("X-RestLi-Id")
	}
	if id == "" {
		err = errors.New("linkedin response carries no post id")
		slog.Error(err.Error(), "author_id", authorID)
		return "", fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return id, nil
}

// FetchAnalytics never fails: any error yields zero counts.
func (s *linkedInService) FetchAnalytics(ctx context.Context, accessToken, externalPostID string) models.Analytics {
	var (
		result transfer.SocialActionsResponse
		apiErr transfer.LinkedInErrorResponse
	)

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetPathParam("id", externalPostID).
		SetResult(&result).
		SetError(&apiErr).
		Get("/socialActions/{id}")
	err = responseError(resp, err, &apiErr)
	s.metrics.RecordExternalCall("linkedin", "fetch_analytics", time.Since(start), err)
	if err != nil {
		slog.Error(err.Error(), "external_post_id", externalPostID)
		s.metrics.RecordAnalyticsFallback()
		return models.Analytics{}
	}

	analytics := models.Analytics{Impressions: result.ImpressionCount}
	if result.LikesSummary != nil {
		analytics.Likes = result.LikesSummary.TotalLikes
	}
	if result.CommentsSummary != nil {
		analytics.Comments = result.CommentsSummary.TotalComments
	}
	if result.SharesSummary != nil {
		analytics.Shares = result.SharesSummary.TotalShares
	}
	return analytics
}

func responseError(resp *resty.Response, err error, apiErr *transfer.LinkedInErrorResponse) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("linkedin returned status %d: %s", resp.StatusCode(), apiErr.Message)
	}
	return nil
}
