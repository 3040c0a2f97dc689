package repository

import (
	emaildomain "mailsweep/internal/email/domain"
)

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	// Create validates the name and rejects a duplicate name for the same user
	Create(category *emaildomain.Category) error
	FindByID(id string) (*emaildomain.Category, error)
	// FindByUserID returns the user's categories ordered by name
	FindByUserID(userID string) ([]*emaildomain.Category, error)
	// Delete removes the category and clears it from any messages
	Delete(id string) error
}
