package repository

import (
	"time"

	accountdomain "mailsweep/internal/account/domain"

	"golang.org/x/oauth2"
)

// MailboxAccountRepository defines persistence operations for linked mailboxes
type MailboxAccountRepository interface {
	// Create inserts the account, rejecting a second primary account for the user
	Create(account *accountdomain.MailboxAccount) error
	FindByID(id string) (*accountdomain.MailboxAccount, error)
	FindByEmail(email string) (*accountdomain.MailboxAccount, error)
	FindByUserID(userID string) ([]*accountdomain.MailboxAccount, error)
	FindAll() ([]*accountdomain.MailboxAccount, error)
	// UpdateTokens persists a refreshed credential pair and expiry
	UpdateTokens(accountID string, token *oauth2.Token) error
	UpdateLastSyncTime(accountID string, at time.Time) error
	UpdateHistoryID(accountID string, historyID uint64) error
	// SetPrimary makes accountID the user's only primary account
	SetPrimary(userID, accountID string) error
	// Delete removes the account together with its messages
	Delete(accountID string) error
}
