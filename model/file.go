package model

import (
	"time"

	"gorm.io/gorm"
)

// File visibility tiers.
const (
	VisibilityPrivate      = "private"       // owner only
	VisibilityTeacherOnly  = "teacher_only"  // owner + teachers
	VisibilityStaffTeacher = "staff_teacher" // owner + staff + teachers
	VisibilityPublic       = "public"        // everyone
)

var Visibilities = []string{
	VisibilityPrivate, VisibilityTeacherOnly, VisibilityStaffTeacher, VisibilityPublic,
}

func IsValidVisibility(v string) bool {
	for _, vis := range Visibilities {
		if vis == v {
			return true
		}
	}
	return false
}

// File stores uploaded file metadata. StoredName is the opaque on-disk name,
// never the user-supplied display name. Checksum and the backing bytes are
// immutable together once written; an empty Checksum marks a pre-migration
// row that has no integrity witness.
type File struct {
	ID          uint   `gorm:"primarykey"`
	DisplayName string `gorm:"size:255;not null"`
	StoredName  string `gorm:"uniqueIndex;size:255;not null"`
	OwnerID     uint   `gorm:"index;not null"`
	Owner       *User  `gorm:"foreignKey:OwnerID;references:ID"`
	Visibility  string `gorm:"size:16;not null;default:teacher_only"`
	Checksum    string `gorm:"size:64"` // sha256 hex digest of the stored bytes
	Size        int64  `gorm:"not null"`
	ContentType string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == 0 {
		f.ID = GenerateID()
	}
	return nil
}
