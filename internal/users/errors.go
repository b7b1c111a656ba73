package users

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrInvalidRole      = errors.New("invalid role")
	ErrSelfDeactivation = errors.New("cannot deactivate own account")
	ErrWrongPassword    = errors.New("current password is incorrect")
)
