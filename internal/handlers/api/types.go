package api

import (
	"context"

	"github.com/vhqtran/campushare/internal/audit"
	"github.com/vhqtran/campushare/internal/common"
	"github.com/vhqtran/campushare/internal/files"
	"github.com/vhqtran/campushare/internal/users"
	"github.com/vhqtran/campushare/model"
)

type AuthService interface {
	Authenticate(ctx context.Context, username, password string, client common.ClientInfo) (*model.User, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateUser(ctx context.Context, opts users.CreateUserOptions) (*model.User, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	SetDisabled(ctx context.Context, actorID uint, userID uint, disabled bool) (*model.User, error)
	ResetPassword(ctx context.Context, userID uint) (*model.User, string, error)
}

type FileService interface {
	Store(ctx context.Context, owner *model.User, upload files.Upload, client common.ClientInfo) (*files.StoreResult, error)
	Fetch(ctx context.Context, actor *model.User, storedName string, client common.ClientInfo) (*files.FetchResult, error)
	ListVisible(ctx context.Context, actor *model.User) ([]*model.File, error)
}

type AuditLog interface {
	Record(ctx context.Context, event audit.Event)
}

type AuditViewer interface {
	ListEvents(ctx context.Context, filter audit.ListFilter) ([]*model.AuditEvent, error)
}
