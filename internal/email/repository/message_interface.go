package repository

import (
	"time"

	emaildomain "mailsweep/internal/email/domain"
)

// EnrichmentUpdate is the result of summarizing and classifying one message.
type EnrichmentUpdate struct {
	Summary         *string
	CategoryID      *string
	UnsubscribeLink *string
	Status          emaildomain.EnrichmentStatus
}

// MessageRepository defines persistence operations for ingested messages
type MessageRepository interface {
	// Create inserts a message; a repeated (remote id, account) pair returns ErrDuplicateMessage
	Create(message *emaildomain.Message) error
	// FindByRemoteID returns nil when the account has no such message
	FindByRemoteID(accountID, remoteID string) (*emaildomain.Message, error)
	FindByID(id string) (*emaildomain.Message, error)
	FindByCategory(userID, categoryID string) ([]*emaildomain.Message, error)
	FindByUser(userID string, limit int) ([]*emaildomain.Message, error)
	// FindEnrichmentDegraded returns messages whose enrichment should be retried
	FindEnrichmentDegraded(limit int) ([]*emaildomain.Message, error)
	SaveEnrichment(id string, update EnrichmentUpdate) error
	MarkArchived(id string) error
	UpdateUnsubscribeStatus(id string, status emaildomain.UnsubscribeStatus, unsubscribedAt *time.Time) error
}
