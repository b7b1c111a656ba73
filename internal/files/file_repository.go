package files

import (
	"context"

	"github.com/vhqtran/campushare/model"
	"gorm.io/gorm"
)

type FileRepository interface {
	WithTx(tx *gorm.DB) FileRepository
	GetByStoredName(ctx context.Context, storedName string) (*model.File, error)
	ListAll(ctx context.Context) ([]*model.File, error)
	Create(ctx context.Context, file *model.File) error
}

type fileRepository struct {
	db *gorm.DB
}

func (r *fileRepository) GetByStoredName(ctx context.Context, storedName string) (*model.File, error) {
	var file model.File
	err := r.db.WithContext(ctx).Preload("Owner").First(&file, "stored_name = ?", storedName).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListAll(ctx context.Context) ([]*model.File, error) {
	var files []*model.File
	err := r.db.WithContext(ctx).Preload("Owner").Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) WithTx(tx *gorm.DB) FileRepository {
	return NewFileRepository(tx)
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db}
}
