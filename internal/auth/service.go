package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"instaclone/internal/shared/security"
	"instaclone/internal/users"
	"instaclone/pkg/logger"
)

var (
	// ErrInvalidCredentials means the login subject does not exist or the
	// password does not match. The two cases are indistinguishable to the
	// caller.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrCredentialsInvalid means a presented token failed verification
	// for any reason other than plain expiry.
	ErrCredentialsInvalid = errors.New("could not validate credentials")

	// ErrPersistence means the session record could not be written, so no
	// tokens were issued.
	ErrPersistence = errors.New("failed to persist session")

	// ErrInvalidResetToken means a password-reset token failed
	// verification or has expired.
	ErrInvalidResetToken = errors.New("invalid password reset token")
)

// Mailer dispatches password-recovery emails out of band.
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, emailTo, username, token string) error
}

type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	RecoverPasswordByEmail(ctx context.Context, email string) error
	RecoverPasswordByUsername(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Logout(ctx context.Context, userID, jti string) error
}

type service struct {
	repo   users.Repository
	hasher *security.Hasher
	codec  *Codec
	store  TokenStore
	mailer Mailer
	log    *logger.Logger

	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

type ServiceConfig struct {
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
}

func NewService(repo users.Repository, hasher *security.Hasher, codec *Codec, store TokenStore, mailer Mailer, log *logger.Logger, cfg ServiceConfig) Service {
	return &service{
		repo:       repo,
		hasher:     hasher,
		codec:      codec,
		store:      store,
		mailer:     mailer,
		log:        log,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		resetTTL:   cfg.ResetTTL,
	}
}

// Login verifies the credentials and opens a session: one access token,
// one refresh token, both carrying the same jti, and a store record at
// userID:jti holding the signed refresh token. A store write failure
// aborts the login so no unanchored refresh token ever leaves the server.
func (s *service) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			s.log.LogAuthFailure(ctx, "unknown username", username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.Password, password) {
		s.log.LogAuthFailure(ctx, "password mismatch", username)
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	jti := uuid.NewString()

	accessClaims := NewTokenClaims(user, ScopeAccessToken, s.issuer, s.audience)
	accessClaims.ID = jti
	accessClaims.stampTimes(now, s.accessTTL)
	accessToken, err := s.codec.Encode(accessClaims)
	if err != nil {
		return nil, err
	}

	refreshClaims := NewTokenClaims(user, ScopeRefreshToken, s.issuer, s.audience)
	refreshClaims.ID = jti
	refreshClaims.stampTimes(now, s.refreshTTL)
	refreshToken, err := s.codec.Encode(refreshClaims)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, user.ID.String(), jti, refreshToken, s.refreshTTL); err != nil {
		s.log.ErrorWithContext(ctx, "refresh token store write failed", err,
			map[string]interface{}{"user_id": user.ID.String()})
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.LogAuthSuccess(ctx, user.ID.String(), "password")

	return &LoginResponse{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		RefreshToken: refreshToken,
	}, nil
}

// Refresh reissues an access token for a live session. The decision is
// made against the STORED refresh token, not the presented one: the
// presented token only locates the record, then the stored copy is
// strictly re-verified. A session whose stored token has expired reports
// expiry; every other failure is a flat credential rejection.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	presented, err := s.codec.Decode(refreshToken)
	if err != nil {
		// Any decode failure of the presented token, expiry included, is a
		// flat credential rejection; only the stored token reports expiry.
		s.log.LogAuthFailure(ctx, "refresh token rejected", "")
		return nil, ErrCredentialsInvalid
	}

	if presented.Scope != ScopeRefreshToken {
		s.log.LogAuthFailure(ctx, "wrong token scope on refresh", presented.PreferredUsername)
		return nil, ErrCredentialsInvalid
	}

	userID, err := presented.UserID()
	if err != nil {
		return nil, ErrCredentialsInvalid
	}

	stored, err := s.store.Get(ctx, userID, presented.ID)
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			// A store outage must not read as "session revoked" in the
			// logs, but the caller still gets a credential rejection.
			s.log.ErrorWithContext(ctx, "refresh token store read failed", err,
				map[string]interface{}{"user_id": userID})
		} else {
			s.log.LogAuthFailure(ctx, "no session record for refresh token", presented.PreferredUsername)
		}
		return nil, ErrCredentialsInvalid
	}

	storedClaims, err := s.codec.Decode(stored)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrCredentialsInvalid
	}

	if storedClaims.ID != presented.ID {
		s.log.LogAuthFailure(ctx, "refresh token jti mismatch", presented.PreferredUsername)
		return nil, ErrCredentialsInvalid
	}
	if storedClaims.PreferredUsername == "" {
		return nil, ErrCredentialsInvalid
	}

	accessClaims := *storedClaims
	accessClaims.Scope = ScopeAccessToken
	accessClaims.stampTimes(time.Now(), s.accessTTL)
	accessToken, err := s.codec.Encode(&accessClaims)
	if err != nil {
		return nil, err
	}

	s.log.LogTokenRefreshed(ctx, userID, storedClaims.ID)

	return &RefreshResponse{AccessToken: accessToken}, nil
}

// RecoverPasswordByEmail issues a reset token for the account owning the
// email and schedules its delivery. The caller learns whether the account
// exists; dispatch failures stay server-side.
func (s *service) RecoverPasswordByEmail(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.dispatchResetEmail(ctx, user)
}

// RecoverPasswordByUsername is RecoverPasswordByEmail with a username
// lookup; the email travels to the address on file.
func (s *service) RecoverPasswordByUsername(ctx context.Context, username string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.dispatchResetEmail(ctx, user)
}

func (s *service) dispatchResetEmail(ctx context.Context, user *users.User) error {
	token, err := s.codec.EncodeResetToken(user.Email, s.resetTTL)
	if err != nil {
		return err
	}

	if s.mailer != nil {
		go func(email, username, token string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.mailer.SendPasswordResetEmail(ctx, email, username, token); err != nil {
				s.log.ErrorWithContext(ctx, "password reset email dispatch failed", err,
					map[string]interface{}{"username": username})
			}
		}(user.Email, user.Username, token)
	}

	return nil
}

// ResetPassword verifies the reset token and replaces the password of the
// account it was issued for. The token is checked before the account
// lookup, so an expired token reports the same way whether or not the
// account still exists.
func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.codec.DecodeResetToken(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID.String(), hashed); err != nil {
		return err
	}

	s.log.InfoWithContext(ctx, "password reset completed",
		map[string]interface{}{"user_id": user.ID.String()})
	return nil
}

// Logout revokes the session record. Revocation is best-effort: a store
// failure is logged but the logout still succeeds, since the client
// discards its tokens either way.
func (s *service) Logout(ctx context.Context, userID, jti string) error {
	if err := s.store.Delete(ctx, userID, jti); err != nil {
		s.log.ErrorWithContext(ctx, "refresh token revocation failed", err,
			map[string]interface{}{"user_id": userID, "jti": jti})
	}
	return nil
}
