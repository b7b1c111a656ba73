package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhqtran/campushare/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*model.User{}}
}

func (r *fakeUserRepo) WithTx(tx *gorm.DB) UserRepository { return r }

func (r *fakeUserRepo) GetByID(ctx context.Context, userID uint) (*model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*model.User, error) {
	all := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	return all, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if _, err := r.GetByUsername(ctx, user.Username); err == nil {
		return &duplicateKeyError{}
	}
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Updates(ctx context.Context, userID uint, columns map[string]interface{}) (int64, error) {
	user, ok := r.users[userID]
	if !ok {
		return 0, nil
	}
	for column, value := range columns {
		switch column {
		case colPassword:
			user.Password = value.(string)
		case colPasswordExpired:
			user.PasswordExpired = value.(bool)
		case colDisabled:
			user.Disabled = value.(bool)
		case colFailedLoginCount:
			user.FailedLoginCount = value.(int)
		case colLockedUntil:
			if value == nil {
				user.LockedUntil = nil
			} else {
				user.LockedUntil = value.(*time.Time)
			}
		}
	}
	return 1, nil
}

func (r *fakeUserRepo) UpdateLockout(ctx context.Context, userID uint, failCount int, lockedUntil *time.Time) error {
	if user, ok := r.users[userID]; ok {
		user.FailedLoginCount = failCount
		user.LockedUntil = lockedUntil
	}
	return nil
}

type duplicateKeyError struct{}

func (e *duplicateKeyError) Error() string {
	return "UNIQUE constraint failed: user.username"
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password, role string) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{Username: username, Password: string(hashed), Role: role}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestCreateUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserOptions{
		Username:     "dave",
		Role:         model.RoleStaff,
		TempPassword: "temp123",
	})
	require.NoError(t, err)
	assert.True(t, user.PasswordExpired)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("temp123")))

	_, err = svc.CreateUser(ctx, CreateUserOptions{Username: "dave", Role: model.RoleStaff, TempPassword: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.CreateUser(ctx, CreateUserOptions{Username: "eve", Role: "superuser", TempPassword: "x"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	user := seedUser(t, repo, "dave", "old-pass", model.RoleStudent)
	repo.users[user.ID].PasswordExpired = true

	err := svc.ChangePassword(ctx, user.ID, "nope", "new-pass")
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.True(t, repo.users[user.ID].PasswordExpired)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "old-pass", "new-pass"))
	stored := repo.users[user.ID]
	assert.False(t, stored.PasswordExpired)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new-pass")))
}

func TestSetDisabled(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	admin := seedUser(t, repo, "root", "pw", model.RoleAdmin)
	target := seedUser(t, repo, "dave", "pw", model.RoleStudent)

	_, err := svc.SetDisabled(ctx, admin.ID, admin.ID, true)
	assert.ErrorIs(t, err, ErrSelfDeactivation)

	user, err := svc.SetDisabled(ctx, admin.ID, target.ID, true)
	require.NoError(t, err)
	assert.True(t, user.Disabled)
	assert.True(t, repo.users[target.ID].Disabled)

	// reactivating your own account is allowed
	repo.users[admin.ID].Disabled = true
	user, err = svc.SetDisabled(ctx, admin.ID, admin.ID, false)
	require.NoError(t, err)
	assert.False(t, user.Disabled)

	_, err = svc.SetDisabled(ctx, admin.ID, 999, true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	user := seedUser(t, repo, "dave", "pw", model.RoleStudent)
	until := time.Now().Add(time.Minute)
	repo.users[user.ID].FailedLoginCount = 3
	repo.users[user.ID].LockedUntil = &until
	repo.users[user.ID].PasswordExpired = false

	_, tempPassword, err := svc.ResetPassword(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, tempPassword)

	stored := repo.users[user.ID]
	assert.True(t, stored.PasswordExpired)
	assert.Equal(t, 0, stored.FailedLoginCount)
	assert.Nil(t, stored.LockedUntil)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(tempPassword)))
}
