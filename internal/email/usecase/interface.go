package usecase

import (
	"context"

	accountdomain "mailsweep/internal/account/domain"
	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/pkg/activitylog"
)

// CategoryUsecase defines the interface for category and categorized email use cases
type CategoryUsecase interface {
	CreateCategory(userID, name string, description *string) (*emaildomain.Category, error)
	ListCategories(userID string) ([]*emaildomain.Category, error)
	// ListEmailsForCategory returns ErrForbidden when the category belongs to another user
	ListEmailsForCategory(userID, categoryID string) ([]*emaildomain.Message, error)
	ListRecentEmails(userID string, limit int) ([]*emaildomain.Message, error)
	DeleteCategory(userID, categoryID string) error
}

// SyncUsecase pulls new mail for linked accounts and enriches it.
type SyncUsecase interface {
	// SyncAll syncs every account in turn; one account failing never stops the rest
	SyncAll(ctx context.Context) error
	SyncAccount(ctx context.Context, account *accountdomain.MailboxAccount) error
	// SyncAccountByEmail is the entry point for push notifications
	SyncAccountByEmail(ctx context.Context, email string) error
	// RetryDegraded re-runs enrichment for messages whose AI calls failed
	RetryDegraded(ctx context.Context, limit int) int
}

// EnrichmentService summarizes and classifies stored messages.
type EnrichmentService interface {
	Summarize(ctx context.Context, body, subject string) string
	Classify(ctx context.Context, body string, categories []*emaildomain.Category) *string
	FindUnsubscribeLink(ctx context.Context, body string) *string
	Process(ctx context.Context, message *emaildomain.Message)
}

// MailboxOpener connects to the remote mailbox of an account.
type MailboxOpener interface {
	Open(ctx context.Context, account *accountdomain.MailboxAccount) (emaildomain.MailSource, error)
}

// ActivityUsecase exposes the in-memory activity log.
type ActivityUsecase interface {
	RecentActivity(limit int, filter activitylog.Filter) []activitylog.Entry
}
