package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const MaxCategoryNameLength = 50

// Category is a user-defined label messages are classified into.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex:idx_categories_user_name"`
	Name        string    `json:"name" gorm:"not null;size:50;uniqueIndex:idx_categories_user_name"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	Messages    []Message `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	slashPattern = regexp.MustCompile(`/{2,}`)
)

// ValidateCategoryName returns an error wrapping ErrInvalidCategoryName when
// name breaks any naming rule.
func ValidateCategoryName(name string) error {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %s", ErrInvalidCategoryName, reason)
	}

	if name == "" {
		return invalid("name is empty")
	}
	if strings.TrimSpace(name) == "" {
		return invalid("name is whitespace only")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return invalid(fmt.Sprintf("name exceeds %d characters", MaxCategoryNameLength))
	}
	if strings.TrimSpace(name) != name {
		return invalid("name has leading or trailing whitespace")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return invalid("name contains control characters")
		}
	}
	if tagPattern.MatchString(name) {
		return invalid("name contains markup")
	}
	if slashPattern.MatchString(name) {
		return invalid("name contains repeated slashes")
	}
	return nil
}
