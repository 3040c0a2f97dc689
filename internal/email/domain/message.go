package domain

import "time"

type UnsubscribeStatus string

const (
	UnsubscribeUnset   UnsubscribeStatus = ""
	UnsubscribePending UnsubscribeStatus = "pending"
	UnsubscribeSuccess UnsubscribeStatus = "success"
	UnsubscribeFailed  UnsubscribeStatus = "failed"
)

// EnrichmentStatus records whether AI enrichment produced usable output.
type EnrichmentStatus string

const (
	EnrichmentPending  EnrichmentStatus = ""
	EnrichmentDone     EnrichmentStatus = "done"
	EnrichmentDegraded EnrichmentStatus = "degraded"
)

// SummaryErrorText is stored as the summary when generation fails.
const SummaryErrorText = "Error generating summary"

// Message is one ingested email.
type Message struct {
	ID                string            `json:"id" gorm:"primaryKey"`
	RemoteID          string            `json:"remote_id" gorm:"not null;uniqueIndex:idx_messages_remote_account"`
	AccountID         string            `json:"account_id" gorm:"not null;index;uniqueIndex:idx_messages_remote_account"`
	UserID            string            `json:"user_id" gorm:"not null;index"`
	Subject           string            `json:"subject"`
	Sender            string            `json:"sender"`
	Content           string            `json:"content" gorm:"type:text"`
	ReceivedAt        time.Time         `json:"received_at"`
	CategoryID        *string           `json:"category_id,omitempty" gorm:"index"`
	Summary           *string           `json:"summary,omitempty" gorm:"type:text"`
	UnsubscribeLink   *string           `json:"unsubscribe_link,omitempty" gorm:"type:text"`
	UnsubscribeStatus UnsubscribeStatus `json:"unsubscribe_status,omitempty"`
	UnsubscribedAt    *time.Time        `json:"unsubscribed_at,omitempty"`
	IsArchived        bool              `json:"is_archived"`
	EnrichmentStatus  EnrichmentStatus  `json:"enrichment_status,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}
