package usecase

import (
	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/internal/email/repository"

	"go.uber.org/zap"
)

const defaultRecentLimit = 50

type categoryUsecase struct {
	categoryRepo repository.CategoryRepository
	messageRepo  repository.MessageRepository
	log          *zap.Logger
}

// NewCategoryUsecase creates a new category usecase instance
func NewCategoryUsecase(categoryRepo repository.CategoryRepository, messageRepo repository.MessageRepository, log *zap.Logger) CategoryUsecase {
	return &categoryUsecase{
		categoryRepo: categoryRepo,
		messageRepo:  messageRepo,
		log:          log.Named("category"),
	}
}

func (u *categoryUsecase) CreateCategory(userID, name string, description *string) (*emaildomain.Category, error) {
	category := &emaildomain.Category{
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	if err := u.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	u.log.Info("category created", zap.String("user_id", userID), zap.String("category_id", category.ID))
	return category, nil
}

func (u *categoryUsecase) ListCategories(userID string) ([]*emaildomain.Category, error) {
	return u.categoryRepo.FindByUserID(userID)
}

// owned loads a category and checks it belongs to userID.
func (u *categoryUsecase) owned(userID, categoryID string) (*emaildomain.Category, error) {
	category, err := u.categoryRepo.FindByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, emaildomain.ErrCategoryNotFound
	}
	if category.UserID != userID {
		return nil, emaildomain.ErrForbidden
	}
	return category, nil
}

func (u *categoryUsecase) ListEmailsForCategory(userID, categoryID string) ([]*emaildomain.Message, error) {
	if _, err := u.owned(userID, categoryID); err != nil {
		return nil, err
	}
	return u.messageRepo.FindByCategory(userID, categoryID)
}

func (u *categoryUsecase) ListRecentEmails(userID string, limit int) ([]*emaildomain.Message, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return u.messageRepo.FindByUser(userID, limit)
}

func (u *categoryUsecase) DeleteCategory(userID, categoryID string) error {
	if _, err := u.owned(userID, categoryID); err != nil {
		return err
	}
	if err := u.categoryRepo.Delete(categoryID); err != nil {
		return err
	}
	u.log.Info("category deleted", zap.String("user_id", userID), zap.String("category_id", categoryID))
	return nil
}
