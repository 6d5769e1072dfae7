package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instaclone/internal/shared/security"
	"instaclone/pkg/logger"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

// Mailer dispatches account emails out of band. A nil Mailer disables
// dispatch entirely.
type Mailer interface {
	SendNewAccountEmail(ctx context.Context, emailTo, username string) error
}

type Service interface {
	Register(ctx context.Context, req *RegisterUserRequest) (*UserResponse, error)
	GetByID(ctx context.Context, id string) (*UserResponse, error)
	GetProfile(ctx context.Context, id string) (*ProfileResponse, error)
	List(ctx context.Context) ([]UserResponse, error)
	Update(ctx context.Context, id string, req *UpdateUserRequest) (*UserResponse, error)
	Delete(ctx context.Context, id string) (time.Time, error)
}

type service struct {
	repo   Repository
	hasher *security.Hasher
	mailer Mailer
	log    *logger.Logger
}

func NewService(repo Repository, hasher *security.Hasher, mailer Mailer, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		mailer: mailer,
		log:    log,
	}
}

func (s *service) Register(ctx context.Context, req *RegisterUserRequest) (*UserResponse, error) {
	taken, err := s.repo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	gender := req.Gender
	if !IsValidGender(gender) {
		gender = string(GenderMale)
	}

	user := &User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    hashed,
		GivenName:   req.GivenName,
		MiddleName:  req.MiddleName,
		FamilyName:  req.FamilyName,
		Gender:      Gender(gender),
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		IsActive:    true,
	}
	if req.Birthdate != "" {
		if birthdate, parseErr := time.Parse("2006-01-02", req.Birthdate); parseErr == nil {
			user.Birthdate = &birthdate
		}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Welcome email is scheduled as background work; a dispatch failure
	// must never fail the registration.
	if s.mailer != nil {
		go func(email, username string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.mailer.SendNewAccountEmail(ctx, email, username); err != nil {
				s.log.ErrorWithContext(ctx, "new account email dispatch failed", err,
					map[string]interface{}{"username": username})
			}
		}(user.Email, user.Username)
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *service) GetProfile(ctx context.Context, id string) (*ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := user.ToProfileResponse()
	return &resp, nil
}

func (s *service) List(ctx context.Context) ([]UserResponse, error) {
	found, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]UserResponse, 0, len(found))
	for i := range found {
		responses = append(responses, found[i].ToResponse())
	}
	return responses, nil
}

func (s *service) Update(ctx context.Context, id string, req *UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.repo.UsernameExists(ctx, *req.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.EmailExists(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}
	if req.Gender != nil && IsValidGender(*req.Gender) {
		user.Gender = Gender(*req.Gender)
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.City != nil {
		user.City = req.City
	}
	if req.State != nil {
		user.State = req.State
	}
	if req.Country != nil {
		user.Country = req.Country
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *service) Delete(ctx context.Context, id string) (time.Time, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return time.Time{}, err
	}
	return time.Now().UTC(), nil
}
