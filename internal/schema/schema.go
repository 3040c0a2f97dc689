package schema

import (
	accountdomain "mailsweep/internal/account/domain"
	emaildomain "mailsweep/internal/email/domain"

	"gorm.io/gorm"
)

// Migrate creates or updates every table. Models are passed together so the
// has-many constraints declared on users, accounts and categories are applied
// to their child tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&accountdomain.User{},
		&accountdomain.MailboxAccount{},
		&emaildomain.Category{},
		&emaildomain.Message{},
	)
}
