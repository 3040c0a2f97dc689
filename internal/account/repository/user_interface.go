package repository

import (
	accountdomain "mailsweep/internal/account/domain"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	// Create validates the email and inserts the user
	Create(user *accountdomain.User) error
	FindByEmail(email string) (*accountdomain.User, error)
	FindByID(id string) (*accountdomain.User, error)
}
