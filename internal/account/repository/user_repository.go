package repository

import (
	"errors"
	"strings"
	"time"

	accountdomain "mailsweep/internal/account/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *accountdomain.User) error {
	user.Email = strings.TrimSpace(user.Email)
	if err := accountdomain.ValidateEmail(user.Email); err != nil {
		return err
	}

	existing, err := r.FindByEmail(user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return accountdomain.ErrDuplicateUser
	}

	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return accountdomain.ErrDuplicateUser
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByEmail(email string) (*accountdomain.User, error) {
	var user accountdomain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(id string) (*accountdomain.User, error) {
	var user accountdomain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
