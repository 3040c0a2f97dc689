package repository

import (
	"errors"
	"time"

	accountdomain "mailsweep/internal/account/domain"
	emaildomain "mailsweep/internal/email/domain"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// mailboxAccountRepository implements MailboxAccountRepository interface
type mailboxAccountRepository struct {
	db *gorm.DB
}

// NewMailboxAccountRepository creates a new instance of mailboxAccountRepository
func NewMailboxAccountRepository(db *gorm.DB) MailboxAccountRepository {
	return &mailboxAccountRepository{
		db: db,
	}
}

func (r *mailboxAccountRepository) Create(account *accountdomain.MailboxAccount) error {
	if account.Provider == "" {
		account.Provider = accountdomain.ProviderGmail
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if account.IsPrimary {
			if err := ensureNoPrimary(tx, account.UserID, ""); err != nil {
				return err
			}
		}

		account.ID = uuid.New().String()
		account.CreatedAt = time.Now()
		account.UpdatedAt = time.Now()
		if err := tx.Create(account).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if account.IsPrimary {
					return accountdomain.ErrPrimaryAccountExists
				}
				return accountdomain.ErrDuplicateAccount
			}
			return err
		}
		return nil
	})
}

func ensureNoPrimary(tx *gorm.DB, userID, exceptID string) error {
	q := tx.Model(&accountdomain.MailboxAccount{}).Where("user_id = ? AND is_primary = ?", userID, true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return accountdomain.ErrPrimaryAccountExists
	}
	return nil
}

func (r *mailboxAccountRepository) FindByID(id string) (*accountdomain.MailboxAccount, error) {
	var account accountdomain.MailboxAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *mailboxAccountRepository) FindByEmail(email string) (*accountdomain.MailboxAccount, error) {
	var account accountdomain.MailboxAccount
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *mailboxAccountRepository) FindByUserID(userID string) ([]*accountdomain.MailboxAccount, error) {
	var accounts []*accountdomain.MailboxAccount
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *mailboxAccountRepository) FindAll() ([]*accountdomain.MailboxAccount, error) {
	var accounts []*accountdomain.MailboxAccount
	err := r.db.Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *mailboxAccountRepository) UpdateTokens(accountID string, token *oauth2.Token) error {
	updates := map[string]interface{}{
		"access_token": token.AccessToken,
		"updated_at":   time.Now(),
	}
	// Google usually omits the refresh token on refresh; keep the stored one.
	if token.RefreshToken != "" {
		updates["refresh_token"] = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		updates["token_expiry"] = &expiry
	}
	return r.db.Model(&accountdomain.MailboxAccount{}).Where("id = ?", accountID).Updates(updates).Error
}

func (r *mailboxAccountRepository) UpdateLastSyncTime(accountID string, at time.Time) error {
	return r.db.Model(&accountdomain.MailboxAccount{}).Where("id = ?", accountID).
		Updates(map[string]interface{}{"last_sync_time": at, "updated_at": time.Now()}).Error
}

func (r *mailboxAccountRepository) UpdateHistoryID(accountID string, historyID uint64) error {
	return r.db.Model(&accountdomain.MailboxAccount{}).Where("id = ?", accountID).
		Update("history_id", historyID).Error
}

func (r *mailboxAccountRepository) SetPrimary(userID, accountID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var account accountdomain.MailboxAccount
		if err := tx.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return accountdomain.ErrAccountNotFound
			}
			return err
		}
		if err := tx.Model(&accountdomain.MailboxAccount{}).
			Where("user_id = ? AND id <> ?", userID, accountID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&account).Update("is_primary", true).Error
	})
}

func (r *mailboxAccountRepository) Delete(accountID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&emaildomain.Message{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", accountID).Delete(&accountdomain.MailboxAccount{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return accountdomain.ErrAccountNotFound
		}
		return nil
	})
}
