package auth

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"instaclone/internal/users"
)

// Scope narrows what a token may be used for. Access tokens authenticate
// API requests, refresh tokens are only accepted by the refresh endpoint.
type Scope string

const (
	ScopeAccessToken  Scope = "access_token"
	ScopeRefreshToken Scope = "refresh_token"
)

func IsValidScope(scope string) bool {
	switch Scope(scope) {
	case ScopeAccessToken, ScopeRefreshToken:
		return true
	default:
		return false
	}
}

const subjectPrefix = "username:"

// ClaimsValidationError reports the first claim that failed validation.
type ClaimsValidationError struct {
	Field  string
	Reason string
}

func (e *ClaimsValidationError) Error() string {
	return fmt.Sprintf("invalid claim %q: %s", e.Field, e.Reason)
}

// TokenClaims is the payload of every token issued by this server. The
// profile fields mirror the OIDC standard claim names so any generic JWT
// tooling can read them.
type TokenClaims struct {
	GivenName         string  `json:"given_name,omitempty"`
	MiddleName        *string `json:"middle_name,omitempty"`
	FamilyName        string  `json:"family_name,omitempty"`
	Nickname          string  `json:"nickname,omitempty"`
	Name              string  `json:"name,omitempty"`
	PreferredUsername string  `json:"preferred_username,omitempty"`
	Email             string  `json:"email,omitempty"`
	Gender            string  `json:"gender,omitempty"`
	Birthdate         string  `json:"birthdate,omitempty"`
	PhoneNumber       string  `json:"phone_number,omitempty"`
	Address           string  `json:"address,omitempty"`
	City              *string `json:"city,omitempty"`
	State             *string `json:"state,omitempty"`
	Country           *string `json:"country,omitempty"`
	UpdatedAt         int64   `json:"updated_at,omitempty"`
	Scope             Scope   `json:"scope,omitempty"`

	jwt.RegisteredClaims
}

// NewTokenClaims builds the claim set for a user. Registered claims that
// depend on issuance time (exp, iat, nbf, jti) are filled by the service.
func NewTokenClaims(user *users.User, scope Scope, issuer, audience string) *TokenClaims {
	claims := &TokenClaims{
		GivenName:         user.GivenName,
		MiddleName:        user.MiddleName,
		FamilyName:        user.FamilyName,
		Nickname:          user.GivenName,
		PreferredUsername: user.Username,
		Email:             user.Email,
		Gender:            string(user.Gender),
		PhoneNumber:       user.PhoneNumber,
		Address:           user.Address,
		City:              user.City,
		State:             user.State,
		Country:           user.Country,
		UpdatedAt:         user.UpdatedAt.Unix(),
		Scope:             scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Audience: jwt.ClaimStrings{audience},
			Subject:  subjectPrefix + user.ID.String(),
		},
	}
	// The composed name claim only exists for users with a middle name;
	// for everyone else given_name and family_name already say it all.
	if user.MiddleName != nil && *user.MiddleName != "" {
		claims.Name = user.FullName()
	}
	if user.Birthdate != nil {
		claims.Birthdate = user.Birthdate.Format("2006-01-02")
	}
	return claims
}

// UserID extracts the user ID from the subject claim.
func (c *TokenClaims) UserID() (string, error) {
	if !strings.HasPrefix(c.Subject, subjectPrefix) {
		return "", &ClaimsValidationError{Field: "sub", Reason: "missing username prefix"}
	}
	id := strings.TrimPrefix(c.Subject, subjectPrefix)
	if _, err := uuid.Parse(id); err != nil {
		return "", &ClaimsValidationError{Field: "sub", Reason: "subject is not a valid user id"}
	}
	return id, nil
}

// Validate enforces the shape of the claim set beyond what signature and
// time-window checks cover. It does not touch exp/nbf; those belong to
// the codec.
func (c *TokenClaims) Validate() error {
	if _, err := c.UserID(); err != nil {
		return err
	}
	if c.PreferredUsername == "" {
		return &ClaimsValidationError{Field: "preferred_username", Reason: "required"}
	}
	if c.Email == "" {
		return &ClaimsValidationError{Field: "email", Reason: "required"}
	}
	if c.GivenName == "" {
		return &ClaimsValidationError{Field: "given_name", Reason: "required"}
	}
	if c.FamilyName == "" {
		return &ClaimsValidationError{Field: "family_name", Reason: "required"}
	}
	if c.Gender != "" && !users.IsValidGender(c.Gender) {
		return &ClaimsValidationError{Field: "gender", Reason: "unknown gender value"}
	}
	if c.Scope != "" && !IsValidScope(string(c.Scope)) {
		return &ClaimsValidationError{Field: "scope", Reason: "unknown scope value"}
	}
	if c.ID == "" {
		return &ClaimsValidationError{Field: "jti", Reason: "required"}
	}
	return nil
}

// stampTimes fills the time-dependent registered claims. nbf is backdated
// one second so a token is usable immediately even across small clock skew.
func (c *TokenClaims) stampTimes(now time.Time, ttl time.Duration) {
	c.IssuedAt = jwt.NewNumericDate(now)
	c.NotBefore = jwt.NewNumericDate(now.Add(-time.Second))
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
}

// ClaimFieldNames lists the wire names of every claim carried by
// TokenClaims, registered claims included.
func ClaimFieldNames() []string {
	var names []string
	var collect func(t reflect.Type)
	collect = func(t reflect.Type) {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				collect(field.Type)
				continue
			}
			tag := field.Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" {
				names = append(names, tag)
			}
		}
	}
	collect(reflect.TypeOf(TokenClaims{}))
	return names
}
