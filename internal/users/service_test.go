package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"instaclone/internal/shared/security"
	"instaclone/pkg/logger"
)

// memoryRepo is an in-memory Repository. Create fills in the ID the way
// the database default would.
type memoryRepo struct {
	byID map[string]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[string]*User)}
}

func (r *memoryRepo) Create(ctx context.Context, user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.byID[user.ID.String()] = user
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (r *memoryRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryRepo) List(ctx context.Context) ([]User, error) {
	var found []User
	for _, u := range r.byID {
		found = append(found, *u)
	}
	return found, nil
}

func (r *memoryRepo) Update(ctx context.Context, user *User) error {
	r.byID[user.ID.String()] = user
	return nil
}

func (r *memoryRepo) UpdatePassword(ctx context.Context, userID string, hashedPassword string) error {
	u, ok := r.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memoryRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *memoryRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type recordingMailer struct {
	sent chan string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan string, 8)}
}

func (m *recordingMailer) SendNewAccountEmail(ctx context.Context, emailTo, username string) error {
	m.sent <- emailTo
	return nil
}

func registerRequest() *RegisterUserRequest {
	middle := "Quincy"
	return &RegisterUserRequest{
		Username:   "jdoe",
		Email:      "jdoe@example.com",
		Password:   "password123",
		GivenName:  "John",
		MiddleName: &middle,
		FamilyName: "Doe",
		Gender:     "male",
		Birthdate:  "1990-04-15",
	}
}

func newUserService(t *testing.T) (Service, *memoryRepo, *recordingMailer) {
	t.Helper()
	repo := newMemoryRepo()
	mailer := newRecordingMailer()
	svc := NewService(repo, security.NewHasher(bcrypt.MinCost), mailer, logger.New())
	return svc, repo, mailer
}

func TestRegister(t *testing.T) {
	svc, repo, mailer := newUserService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "jdoe", resp.Username)
	assert.NotEmpty(t, resp.ID)

	stored, err := repo.GetByUsername(ctx, "jdoe")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.Password, "password is stored hashed")
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.Birthdate)
	assert.Equal(t, 1990, stored.Birthdate.Year())

	select {
	case to := <-mailer.sent:
		assert.Equal(t, "jdoe@example.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not dispatched")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	dup := registerRequest()
	dup.Email = "other@example.com"
	_, err = svc.Register(ctx, dup)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	dup := registerRequest()
	dup.Username = "other"
	_, err = svc.Register(ctx, dup)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetProfile(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", profile.Username)
	assert.Equal(t, "John", profile.GivenName)
	require.NotNil(t, profile.MiddleName)
	assert.Equal(t, "Quincy", *profile.MiddleName)

	_, err = svc.GetProfile(ctx, uuid.NewString())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdate(t *testing.T) {
	svc, repo, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	username := "johnny"
	phone := "+15559876543"
	resp, err := svc.Update(ctx, created.ID, &UpdateUserRequest{
		Username:    &username,
		PhoneNumber: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "johnny", resp.Username)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "+15559876543", stored.PhoneNumber)
}

func TestUpdateUsernameConflict(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	second := registerRequest()
	second.Username = "other"
	second.Email = "other@example.com"
	_, err = svc.Register(ctx, second)
	require.NoError(t, err)

	taken := "other"
	_, err = svc.Update(ctx, first.ID, &UpdateUserRequest{Username: &taken})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUpdatePasswordIsRehashed(t *testing.T) {
	svc, repo, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	newPassword := "newpassword1"
	_, err = svc.Update(ctx, created.ID, &UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "newpassword1", stored.Password)
	assert.True(t, security.NewHasher(bcrypt.MinCost).Verify(stored.Password, "newpassword1"))
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	deletedAt, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deletedAt.IsZero())

	_, err = repo.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}
