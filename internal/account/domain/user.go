package domain

import (
	"fmt"
	"regexp"
	"time"
)

type User struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	Email     string           `json:"email" gorm:"not null;uniqueIndex"`
	Accounts  []MailboxAccount `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks the local@domain.tld shape required for user addresses.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}
