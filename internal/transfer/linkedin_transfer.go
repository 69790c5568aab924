package transfer

import "time"

type LinkedInToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type LinkedInProfile struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	PictureURL string `json:"picture_url,omitempty"`
}

type LocalizedString struct {
	Localized map[string]string `json:"localized"`
}

type LinkedInProfileResponse struct {
	ID             string          `json:"id"`
	FirstName      LocalizedString `json:"firstName"`
	LastName       LocalizedString `json:"lastName"`
	ProfilePicture *struct {
		DisplayImage struct {
			Elements []struct {
				Identifiers []struct {
					Identifier string `json:"identifier"`
				} `json:"identifiers"`
			} `json:"elements"`
		} `json:"displayImage~"`
	} `json:"profilePicture,omitempty"`
}

type ShareCommentary struct {
	Text string `json:"text"`
}

type ShareContent struct {
	ShareCommentary    ShareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
}

type UGCPostRequest struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]ShareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type UGCPostResponse struct {
	ID string `json:"id"`
}

type SocialActionsResponse struct {
	LikesSummary *struct {
		TotalLikes int64 `json:"totalLikes"`
	} `json:"likesSummary,omitempty"`
	CommentsSummary *struct {
		TotalComments int64 `json:"totalComments"`
	} `json:"commentsSummary,omitempty"`
	SharesSummary *struct {
		TotalShares int64 `json:"totalShares"`
	} `json:"sharesSummary,omitempty"`
	ImpressionCount int64 `json:"impressionCount"`
}

type LinkedInErrorResponse struct {
	Status           int    `json:"status"`
	ServiceErrorCode int    `json:"serviceErrorCode"`
	Message          string `json:"message"`
}

type LinkResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}
