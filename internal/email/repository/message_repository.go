package repository

import (
	"errors"
	"time"

	emaildomain "mailsweep/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of messageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) Create(message *emaildomain.Message) error {
	message.ID = uuid.New().String()
	message.CreatedAt = time.Now()
	message.UpdatedAt = time.Now()
	if err := r.db.Create(message).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return emaildomain.ErrDuplicateMessage
		}
		return err
	}
	return nil
}

func (r *messageRepository) FindByRemoteID(accountID, remoteID string) (*emaildomain.Message, error) {
	var message emaildomain.Message
	err := r.db.Where("account_id = ? AND remote_id = ?", accountID, remoteID).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindByID(id string) (*emaildomain.Message, error) {
	var message emaildomain.Message
	err := r.db.Where("id = ?", id).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindByCategory(userID, categoryID string) ([]*emaildomain.Message, error) {
	var messages []*emaildomain.Message
	err := r.db.Where("user_id = ? AND category_id = ?", userID, categoryID).
		Order("received_at DESC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) FindByUser(userID string, limit int) ([]*emaildomain.Message, error) {
	var messages []*emaildomain.Message
	q := r.db.Where("user_id = ?", userID).Order("received_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&messages).Error
	return messages, err
}

func (r *messageRepository) FindEnrichmentDegraded(limit int) ([]*emaildomain.Message, error) {
	var messages []*emaildomain.Message
	q := r.db.Where("enrichment_status = ?", emaildomain.EnrichmentDegraded).Order("received_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&messages).Error
	return messages, err
}

func (r *messageRepository) SaveEnrichment(id string, update EnrichmentUpdate) error {
	updates := map[string]interface{}{
		"summary":           update.Summary,
		"category_id":       update.CategoryID,
		"enrichment_status": update.Status,
		"updated_at":        time.Now(),
	}
	if update.UnsubscribeLink != nil {
		updates["unsubscribe_link"] = update.UnsubscribeLink
	}
	return r.db.Model(&emaildomain.Message{}).Where("id = ?", id).Updates(updates).Error
}

func (r *messageRepository) MarkArchived(id string) error {
	return r.db.Model(&emaildomain.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_archived": true, "updated_at": time.Now()}).Error
}

func (r *messageRepository) UpdateUnsubscribeStatus(id string, status emaildomain.UnsubscribeStatus, unsubscribedAt *time.Time) error {
	updates := map[string]interface{}{
		"unsubscribe_status": status,
		"updated_at":         time.Now(),
	}
	if unsubscribedAt != nil {
		updates["unsubscribed_at"] = unsubscribedAt
	}
	res := r.db.Model(&emaildomain.Message{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return emaildomain.ErrMessageNotFound
	}
	return nil
}
