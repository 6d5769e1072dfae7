package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/users"
)

const (
	testIssuer   = "http://localhost:8080"
	testAudience = "http://localhost:8080/authentication/login"
)

func testUser() *users.User {
	middle := "Quincy"
	city := "Springfield"
	return &users.User{
		ID:          uuid.New(),
		Username:    "jdoe",
		Email:       "jdoe@example.com",
		Password:    "$2a$04$ignored",
		GivenName:   "John",
		MiddleName:  &middle,
		FamilyName:  "Doe",
		Gender:      users.GenderMale,
		PhoneNumber: "+15551234567",
		City:        &city,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestNewTokenClaims(t *testing.T) {
	user := testUser()
	claims := NewTokenClaims(user, ScopeAccessToken, testIssuer, testAudience)

	assert.Equal(t, "username:"+user.ID.String(), claims.Subject)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Contains(t, claims.Audience, testAudience)
	assert.Equal(t, "jdoe", claims.PreferredUsername)
	assert.Equal(t, "John", claims.Nickname, "nickname defaults to the given name")
	assert.Equal(t, "John Quincy Doe", claims.Name, "name includes the middle name when present")
	assert.Equal(t, ScopeAccessToken, claims.Scope)
}

func TestNewTokenClaimsWithoutMiddleName(t *testing.T) {
	user := testUser()
	user.MiddleName = nil

	claims := NewTokenClaims(user, ScopeRefreshToken, testIssuer, testAudience)
	assert.Nil(t, claims.MiddleName)
	assert.Empty(t, claims.Name, "no composed name without a middle name")
}

func TestClaimsUserID(t *testing.T) {
	user := testUser()
	claims := NewTokenClaims(user, ScopeAccessToken, testIssuer, testAudience)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), id)
}

func TestClaimsUserIDRejectsBadSubject(t *testing.T) {
	user := testUser()

	tests := []struct {
		name    string
		subject string
	}{
		{"missing prefix", user.ID.String()},
		{"wrong prefix", "user:" + user.ID.String()},
		{"not a uuid", "username:not-a-uuid"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := NewTokenClaims(user, ScopeAccessToken, testIssuer, testAudience)
			claims.Subject = tt.subject

			_, err := claims.UserID()
			require.Error(t, err)

			var verr *ClaimsValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "sub", verr.Field)
		})
	}
}

func TestClaimsValidate(t *testing.T) {
	newValid := func() *TokenClaims {
		claims := NewTokenClaims(testUser(), ScopeAccessToken, testIssuer, testAudience)
		claims.ID = uuid.NewString()
		return claims
	}

	require.NoError(t, newValid().Validate())

	tests := []struct {
		name   string
		mutate func(*TokenClaims)
		field  string
	}{
		{"missing preferred_username", func(c *TokenClaims) { c.PreferredUsername = "" }, "preferred_username"},
		{"missing email", func(c *TokenClaims) { c.Email = "" }, "email"},
		{"missing given_name", func(c *TokenClaims) { c.GivenName = "" }, "given_name"},
		{"missing family_name", func(c *TokenClaims) { c.FamilyName = "" }, "family_name"},
		{"unknown gender", func(c *TokenClaims) { c.Gender = "unknown" }, "gender"},
		{"unknown scope", func(c *TokenClaims) { c.Scope = "session_token" }, "scope"},
		{"missing jti", func(c *TokenClaims) { c.ID = "" }, "jti"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := newValid()
			tt.mutate(claims)

			err := claims.Validate()
			require.Error(t, err)

			var verr *ClaimsValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestClaimFieldNames(t *testing.T) {
	names := ClaimFieldNames()

	for _, want := range []string{
		"given_name", "family_name", "nickname", "name", "preferred_username",
		"email", "gender", "scope",
		"iss", "sub", "aud", "exp", "nbf", "iat", "jti",
	} {
		assert.Contains(t, names, want)
	}
}
