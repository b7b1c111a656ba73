package users

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/vhqtran/campushare/internal/common"
	"github.com/vhqtran/campushare/model"
	"github.com/vhqtran/campushare/params"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// user table column names used in partial updates
const (
	colPassword         = "password"
	colPasswordExpired  = "password_expired"
	colDisabled         = "disabled"
	colFailedLoginCount = "failed_login_count"
	colLockedUntil      = "locked_until"
)

type CreateUserOptions struct {
	Username     string
	Role         string
	TempPassword string
}

// UserService manages the account lifecycle. Accounts are created by admin
// action only; there is no self-registration.
type UserService struct {
	userRepo UserRepository
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}

// CreateUser creates an account with a temporary password. The account is
// created with PasswordExpired set, forcing a password change at first login.
func (s *UserService) CreateUser(ctx context.Context, opts CreateUserOptions) (*model.User, error) {
	if !model.IsValidRole(opts.Role) {
		return nil, ErrInvalidRole
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(opts.TempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Username:        opts.Username,
		Password:        string(passwordHash),
		Role:            opts.Role,
		PasswordExpired: true,
	}

	var mysqlErr *mysql.MySQLError
	err = s.userRepo.Create(ctx, &user)
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return nil, ErrUsernameTaken
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		// sqlite duplicate key
		return nil, ErrUsernameTaken
	}
	return &user, err
}

// ChangePassword verifies the current password and sets the new one,
// clearing the forced-change flag. Both columns commit in one statement.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.userRepo.Updates(ctx, userID, map[string]interface{}{
		colPassword:        string(passwordHash),
		colPasswordExpired: false,
	})
	return err
}

// SetDisabled toggles the hard login deny flag. actorID guards against an
// admin deactivating their own account.
func (s *UserService) SetDisabled(ctx context.Context, actorID uint, userID uint, disabled bool) (*model.User, error) {
	if actorID == userID && disabled {
		return nil, ErrSelfDeactivation
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.Updates(ctx, userID, map[string]interface{}{
		colDisabled: disabled,
	}); err != nil {
		return nil, err
	}
	user.Disabled = disabled
	return user, nil
}

// ResetPassword assigns a random temporary password, re-arms the forced
// password change and clears any lockout state in one atomic update. The
// temporary password is returned for the admin to hand over out of band.
func (s *UserService) ResetPassword(ctx context.Context, userID uint) (*model.User, string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	tempPassword, err := common.GenerateSecret(params.TempPasswordLength)
	if err != nil {
		return nil, "", err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	_, err = s.userRepo.Updates(ctx, userID, map[string]interface{}{
		colPassword:         string(passwordHash),
		colPasswordExpired:  true,
		colFailedLoginCount: 0,
		colLockedUntil:      nil,
	})
	if err != nil {
		return nil, "", err
	}
	return user, tempPassword, nil
}

func NewUserService(userRepo UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}
