package posts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/shared/constants"
	"instaclone/pkg/cache"
	"instaclone/pkg/logger"
)

// memoryPostRepo is an in-memory Repository that counts reads, so tests
// can tell cache hits from database round trips.
type memoryPostRepo struct {
	byID  map[string]*Post
	reads int
}

func newMemoryPostRepo() *memoryPostRepo {
	return &memoryPostRepo{byID: make(map[string]*Post)}
}

func (r *memoryPostRepo) Create(ctx context.Context, post *Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	r.byID[post.ID.String()] = post
	return nil
}

func (r *memoryPostRepo) GetByID(ctx context.Context, id string) (*Post, error) {
	r.reads++
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, ErrPostNotFound
}

func (r *memoryPostRepo) List(ctx context.Context) ([]Post, error) {
	r.reads++
	var found []Post
	for _, p := range r.byID {
		found = append(found, *p)
	}
	return found, nil
}

func (r *memoryPostRepo) ListByUser(ctx context.Context, userID string) ([]Post, error) {
	var found []Post
	for _, p := range r.byID {
		if p.UserID.String() == userID {
			found = append(found, *p)
		}
	}
	return found, nil
}

func (r *memoryPostRepo) Update(ctx context.Context, post *Post) error {
	r.byID[post.ID.String()] = post
	return nil
}

func (r *memoryPostRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrPostNotFound
	}
	delete(r.byID, id)
	return nil
}

// memoryCache keeps the JSON semantics of the Redis cache, writing back
// synchronously so tests stay deterministic.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.entries[key]
	return ok
}

func (c *memoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	data, err := fetcher()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }

var _ cache.Service = (*memoryCache)(nil)

func newPostService(t *testing.T) (Service, *memoryPostRepo, *memoryCache) {
	t.Helper()
	repo := newMemoryPostRepo()
	store := newMemoryCache()
	return NewService(repo, store, time.Minute, logger.New()), repo, store
}

func createPost(t *testing.T, svc Service, ownerID string) *PostResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), ownerID, &CreatePostRequest{
		ImageURL: "https://cdn.example.com/img/sunset.jpg",
		Caption:  "golden hour",
	})
	require.NoError(t, err)
	return resp
}

func TestCreatePost(t *testing.T) {
	svc, repo, _ := newPostService(t)
	ownerID := uuid.NewString()

	resp := createPost(t, svc, ownerID)
	assert.Equal(t, ownerID, resp.UserID)
	assert.Equal(t, "golden hour", resp.Caption)
	assert.NotEmpty(t, resp.ID)

	_, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
}

func TestCreatePostRejectsBadOwnerID(t *testing.T) {
	svc, _, _ := newPostService(t)

	_, err := svc.Create(context.Background(), "not-a-uuid", &CreatePostRequest{
		ImageURL: "https://cdn.example.com/img/sunset.jpg",
		Caption:  "golden hour",
	})
	require.Error(t, err)
}

func TestGetByIDUsesCache(t *testing.T) {
	svc, repo, _ := newPostService(t)
	created := createPost(t, svc, uuid.NewString())
	ctx := context.Background()

	first, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	readsAfterFirst := repo.reads

	second, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, readsAfterFirst, repo.reads, "second read is served from cache")
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _, _ := newPostService(t)

	_, err := svc.GetByID(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestListFeedCachesAndInvalidates(t *testing.T) {
	svc, repo, _ := newPostService(t)
	ctx := context.Background()
	ownerID := uuid.NewString()

	createPost(t, svc, ownerID)

	feed, err := svc.ListFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	readsAfterFirst := repo.reads

	_, err = svc.ListFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, readsAfterFirst, repo.reads, "repeat feed read is a cache hit")

	// A new post drops the feed entry so the next read sees it.
	createPost(t, svc, ownerID)
	feed, err = svc.ListFeed(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestListByUser(t *testing.T) {
	svc, _, _ := newPostService(t)
	ctx := context.Background()
	ownerID := uuid.NewString()

	createPost(t, svc, ownerID)
	createPost(t, svc, ownerID)
	createPost(t, svc, uuid.NewString())

	mine, err := svc.ListByUser(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestUpdatePostOwnership(t *testing.T) {
	svc, _, _ := newPostService(t)
	ctx := context.Background()
	ownerID := uuid.NewString()
	created := createPost(t, svc, ownerID)

	caption := "edited caption"
	resp, err := svc.Update(ctx, created.ID, ownerID, &UpdatePostRequest{Caption: &caption})
	require.NoError(t, err)
	assert.Equal(t, "edited caption", resp.Caption)

	_, err = svc.Update(ctx, created.ID, uuid.NewString(), &UpdatePostRequest{Caption: &caption})
	require.ErrorIs(t, err, ErrNotPostOwner)
}

func TestUpdatePostInvalidatesCache(t *testing.T) {
	svc, _, store := newPostService(t)
	ctx := context.Background()
	ownerID := uuid.NewString()
	created := createPost(t, svc, ownerID)

	_, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, store.Exists(ctx, constants.PostByIDCachePref+created.ID))

	caption := "edited caption"
	_, err = svc.Update(ctx, created.ID, ownerID, &UpdatePostRequest{Caption: &caption})
	require.NoError(t, err)
	assert.False(t, store.Exists(ctx, constants.PostByIDCachePref+created.ID))

	fresh, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited caption", fresh.Caption)
}

func TestDeletePost(t *testing.T) {
	svc, repo, _ := newPostService(t)
	ctx := context.Background()
	ownerID := uuid.NewString()
	created := createPost(t, svc, ownerID)

	_, err := svc.Delete(ctx, created.ID, uuid.NewString())
	require.ErrorIs(t, err, ErrNotPostOwner)

	deletedAt, err := svc.Delete(ctx, created.ID, ownerID)
	require.NoError(t, err)
	assert.False(t, deletedAt.IsZero())

	_, err = repo.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.Delete(ctx, created.ID, ownerID)
	require.ErrorIs(t, err, ErrPostNotFound)
}
