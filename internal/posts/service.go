package posts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"instaclone/internal/shared/constants"
	"instaclone/pkg/cache"
	"instaclone/pkg/logger"
)

// ErrNotPostOwner means the caller tried to modify a post they do not own.
var ErrNotPostOwner = errors.New("post belongs to another user")

type Service interface {
	Create(ctx context.Context, userID string, req *CreatePostRequest) (*PostResponse, error)
	GetByID(ctx context.Context, id string) (*PostResponse, error)
	ListFeed(ctx context.Context) ([]PostResponse, error)
	ListByUser(ctx context.Context, userID string) ([]PostResponse, error)
	Update(ctx context.Context, id, callerID string, req *UpdatePostRequest) (*PostResponse, error)
	Delete(ctx context.Context, id, callerID string) (time.Time, error)
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
	log      *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, cacheTTL time.Duration, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (s *service) Create(ctx context.Context, userID string, req *CreatePostRequest) (*PostResponse, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	post := &Post{
		UserID:   ownerID,
		ImageURL: req.ImageURL,
		Caption:  req.Caption,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.invalidateFeed(ctx)
	s.log.LogPostCreated(ctx, post.ID.String(), userID)

	resp := post.ToResponse()
	return &resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*PostResponse, error) {
	var resp PostResponse
	err := s.cache.GetOrSet(ctx, constants.PostByIDCachePref+id, s.cacheTTL,
		func() (interface{}, error) {
			post, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return post.ToResponse(), nil
		}, &resp)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (s *service) ListFeed(ctx context.Context) ([]PostResponse, error) {
	var responses []PostResponse
	err := s.cache.GetOrSet(ctx, constants.PostFeedCacheKey, s.cacheTTL,
		func() (interface{}, error) {
			found, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			return toResponses(found), nil
		}, &responses)
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]PostResponse, error) {
	found, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(found), nil
}

func (s *service) Update(ctx context.Context, id, callerID string, req *UpdatePostRequest) (*PostResponse, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID.String() != callerID {
		return nil, ErrNotPostOwner
	}

	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}
	if req.Caption != nil {
		post.Caption = *req.Caption
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.invalidatePost(ctx, id)

	resp := post.ToResponse()
	return &resp, nil
}

func (s *service) Delete(ctx context.Context, id, callerID string) (time.Time, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	if post.UserID.String() != callerID {
		return time.Time{}, ErrNotPostOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return time.Time{}, err
	}

	s.invalidatePost(ctx, id)

	return time.Now().UTC(), nil
}

// invalidatePost drops both the per-post entry and the feed.
func (s *service) invalidatePost(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, constants.PostByIDCachePref+id); err != nil {
		s.log.ErrorWithContext(ctx, "post cache invalidation failed", err,
			map[string]interface{}{"post_id": id})
	}
	s.invalidateFeed(ctx)
}

func (s *service) invalidateFeed(ctx context.Context) {
	if err := s.cache.Delete(ctx, constants.PostFeedCacheKey); err != nil {
		s.log.ErrorWithContext(ctx, "feed cache invalidation failed", err, nil)
	}
}

func toResponses(found []Post) []PostResponse {
	responses := make([]PostResponse, 0, len(found))
	for i := range found {
		responses = append(responses, found[i].ToResponse())
	}
	return responses
}
