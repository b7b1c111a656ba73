package model

import (
	"time"

	"gorm.io/gorm"
)

// Account roles, exactly one per user.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

var Roles = []string{RoleStudent, RoleTeacher, RoleStaff, RoleAdmin}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User stores account information. Username is immutable after creation.
type User struct {
	ID               uint       `gorm:"primarykey"`
	Username         string     `gorm:"uniqueIndex;size:32;not null"`
	Password         string     `gorm:"size:64;not null"` // bcrypt hash, never compared by raw equality
	Role             string     `gorm:"size:16;not null;default:student"`
	PasswordExpired  bool       `gorm:"default:true;not null"` // true until the first voluntary password change
	Disabled         bool       `gorm:"default:false;not null"`
	FailedLoginCount int        `gorm:"default:0;not null"`
	LockedUntil      *time.Time // set when FailedLoginCount reaches the lockout threshold
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStaff() bool   { return u.Role == RoleStaff }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
