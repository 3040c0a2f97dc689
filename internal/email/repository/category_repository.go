package repository

import (
	"errors"
	"time"

	emaildomain "mailsweep/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// categoryRepository implements CategoryRepository interface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new instance of categoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{
		db: db,
	}
}

func (r *categoryRepository) Create(category *emaildomain.Category) error {
	if err := emaildomain.ValidateCategoryName(category.Name); err != nil {
		return err
	}

	var count int64
	if err := r.db.Model(&emaildomain.Category{}).
		Where("user_id = ? AND name = ?", category.UserID, category.Name).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return emaildomain.ErrDuplicateCategory
	}

	category.ID = uuid.New().String()
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	if err := r.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return emaildomain.ErrDuplicateCategory
		}
		return err
	}
	return nil
}

func (r *categoryRepository) FindByID(id string) (*emaildomain.Category, error) {
	var category emaildomain.Category
	err := r.db.Where("id = ?", id).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByUserID(userID string) ([]*emaildomain.Category, error) {
	var categories []*emaildomain.Category
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&emaildomain.Message{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&emaildomain.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return emaildomain.ErrCategoryNotFound
		}
		return nil
	})
}
