package usecase

import (
	"time"

	accountdomain "mailsweep/internal/account/domain"
	emaildomain "mailsweep/internal/email/domain"
)

// LinkAccountInput carries the result of an external OAuth linking flow.
type LinkAccountInput struct {
	UserID       string
	Email        string
	GoogleID     string
	Provider     accountdomain.Provider
	IMAPHost     string
	IMAPPort     int
	AccessToken  string
	RefreshToken string
	TokenExpiry  *time.Time
	IsPrimary    bool
}

// AccountUsecase defines the interface for user and mailbox account use cases
type AccountUsecase interface {
	CreateUser(email string) (*accountdomain.User, error)
	GetUserByEmail(email string) (*accountdomain.User, error)
	LinkAccount(input LinkAccountInput) (*accountdomain.MailboxAccount, error)
	ListAccounts(userID string) ([]*accountdomain.MailboxAccount, error)
	SetPrimary(userID, accountID string) error
	DeleteAccount(userID, accountID string) error
	// TokenUpdater returns a callback that persists refreshed tokens for accountID
	TokenUpdater(accountID string) emaildomain.TokenUpdateFunc
}
