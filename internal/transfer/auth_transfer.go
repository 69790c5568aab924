package transfer

import (
	"regexp"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// StateClaims wraps the OAuth state payload so the callback can verify who started the flow.
type StateClaims struct {
	Payload string `json:"payload"`
	jwt.RegisteredClaims
}

var (
	lowerRe = regexp.MustCompile(`[a-z]`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

type Register struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (b Register) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Email, v.Required, is.Email),
		v.Field(&b.Password, v.Required, v.Length(6, 128),
			v.Match(lowerRe).Error("must contain a lowercase letter"),
			v.Match(upperRe).Error("must contain an uppercase letter"),
			v.Match(digitRe).Error("must contain a digit"),
		),
		v.Field(&b.FirstName, v.Required, v.Length(2, 100)),
		v.Field(&b.LastName, v.Required, v.Length(2, 100)),
	)
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b Login) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Email, v.Required, is.Email),
		v.Field(&b.Password, v.Required),
	)
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type UserProfile struct {
	ID                string           `json:"id"`
	Email             string           `json:"email"`
	FirstName         string           `json:"first_name"`
	LastName          string           `json:"last_name"`
	LinkedInConnected bool             `json:"linkedin_connected"`
	LinkedInProfile   *LinkedInProfile `json:"linkedin_profile,omitempty"`
}
