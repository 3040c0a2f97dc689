package domain

import (
	"time"

	emaildomain "mailsweep/internal/email/domain"
)

type Provider string

const (
	ProviderGmail Provider = "gmail"
	ProviderIMAP  Provider = "imap"
)

// MailboxAccount is a linked remote mailbox and its OAuth credentials.
// At most one account per user may be primary.
type MailboxAccount struct {
	ID           string                `json:"id" gorm:"primaryKey"`
	UserID       string                `json:"user_id" gorm:"not null;index;uniqueIndex:idx_accounts_one_primary,where:is_primary = true"`
	Email        string                `json:"email" gorm:"not null;uniqueIndex"`
	GoogleID     string                `json:"google_id" gorm:"not null;uniqueIndex"`
	Provider     Provider              `json:"provider" gorm:"not null;default:gmail"`
	IMAPHost     string                `json:"imap_host,omitempty"`
	IMAPPort     int                   `json:"imap_port,omitempty"`
	IsPrimary    bool                  `json:"is_primary" gorm:"not null;default:false"`
	AccessToken  string                `json:"-" gorm:"type:text"`
	RefreshToken string                `json:"-" gorm:"type:text"`
	TokenExpiry  *time.Time            `json:"token_expiry,omitempty"`
	LastSyncTime *time.Time            `json:"last_sync_time,omitempty"`
	HistoryID    uint64                `json:"history_id,omitempty"`
	Messages     []emaildomain.Message `json:"-" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func (MailboxAccount) TableName() string {
	return "mailbox_accounts"
}
