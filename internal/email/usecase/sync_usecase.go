package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	accountdomain "mailsweep/internal/account/domain"
	accountrepo "mailsweep/internal/account/repository"
	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/internal/email/repository"
	"mailsweep/pkg/metrics"

	"go.uber.org/zap"
)

const (
	defaultLookback = 24 * time.Hour
	defaultSender   = "Unknown"
	defaultSubject  = "No Subject"
)

type syncUsecase struct {
	accountRepo accountrepo.MailboxAccountRepository
	messageRepo repository.MessageRepository
	opener      MailboxOpener
	extractor   *Extractor
	enrichment  EnrichmentService
	pageSize    int
	now         func() time.Time
	log         *zap.Logger
}

type SyncOption func(*syncUsecase)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SyncOption {
	return func(u *syncUsecase) { u.now = now }
}

// WithPageSize sets the adapter page size used to detect a truncated listing.
func WithPageSize(n int) SyncOption {
	return func(u *syncUsecase) {
		if n > 0 {
			u.pageSize = n
		}
	}
}

// NewSyncUsecase creates the mailbox sync loop
func NewSyncUsecase(
	accountRepo accountrepo.MailboxAccountRepository,
	messageRepo repository.MessageRepository,
	opener MailboxOpener,
	extractor *Extractor,
	enrichment EnrichmentService,
	log *zap.Logger,
	opts ...SyncOption,
) SyncUsecase {
	u := &syncUsecase{
		accountRepo: accountRepo,
		messageRepo: messageRepo,
		opener:      opener,
		extractor:   extractor,
		enrichment:  enrichment,
		pageSize:    50,
		now:         time.Now,
		log:         log.Named("sync"),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *syncUsecase) SyncAll(ctx context.Context) error {
	accounts, err := u.accountRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	for _, account := range accounts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := u.SyncAccount(ctx, account); err != nil {
			u.log.Error("account sync failed", zap.String("account", account.Email), zap.Error(err))
		}
	}
	return nil
}

func (u *syncUsecase) SyncAccountByEmail(ctx context.Context, email string) error {
	account, err := u.accountRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if account == nil {
		return accountdomain.ErrAccountNotFound
	}
	return u.SyncAccount(ctx, account)
}

// SyncAccount ingests messages that arrived since the last sync. A run that
// reaches the end of its listing moves the last sync time to the start of the
// run, even when listing or single messages failed. A mailbox that could not
// be opened, or a run cut short by ctx, keeps its window.
func (u *syncUsecase) SyncAccount(ctx context.Context, account *accountdomain.MailboxAccount) (err error) {
	start := u.now()
	log := u.log.With(zap.String("account", account.Email))

	since := start.Add(-defaultLookback)
	if account.LastSyncTime != nil {
		since = *account.LastSyncTime
	}
	status := "ok"

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync panicked: %v", r)
		}
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = "cancelled"
		default:
			status = "error"
		}
		metrics.SyncRuns.WithLabelValues(status).Inc()

		if err != nil {
			return
		}
		if uerr := u.accountRepo.UpdateLastSyncTime(account.ID, start); uerr != nil {
			log.Error("failed to update last sync time", zap.Error(uerr))
			return
		}
		account.LastSyncTime = &start
	}()

	log.Info("starting sync", zap.Time("since", since))

	src, err := u.opener.Open(ctx, account)
	if err != nil {
		return fmt.Errorf("open mailbox: %w", err)
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	ids, err := src.ListNew(ctx, since)
	if err != nil {
		log.Warn("listing new messages failed, treating as empty", zap.Error(err))
		status = "list_failed"
		ids = nil
	}
	if len(ids) >= u.pageSize {
		log.Warn("listing hit the page cap, older messages stay in the inbox", zap.Int("page_size", u.pageSize))
	}

	stored := 0
	for _, remoteID := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ok, err := u.syncMessage(ctx, src, account, remoteID)
		if err != nil {
			metrics.MessagesIngested.WithLabelValues("failed").Inc()
			log.Error("message sync failed", zap.String("remote_id", remoteID), zap.Error(err))
			continue
		}
		if ok {
			stored++
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	log.Info("sync finished", zap.Int("listed", len(ids)), zap.Int("stored", stored))
	return nil
}

// syncMessage stores, enriches and archives one remote message. It reports
// false when the message was already ingested; such a message is archived
// again if an earlier run could not move it out of the inbox.
func (u *syncUsecase) syncMessage(ctx context.Context, src emaildomain.MailSource, account *accountdomain.MailboxAccount, remoteID string) (stored bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	existing, err := u.messageRepo.FindByRemoteID(account.ID, remoteID)
	if err != nil {
		return false, fmt.Errorf("check existing: %w", err)
	}
	if existing != nil {
		if !existing.IsArchived {
			u.archive(ctx, src, existing)
		}
		return false, nil
	}

	raw, err := src.Fetch(ctx, remoteID)
	if err != nil {
		return false, fmt.Errorf("fetch: %w", err)
	}

	subject := defaultSubject
	if v, ok := raw.Header("Subject"); ok {
		subject = v
	}
	sender := defaultSender
	if v, ok := raw.Header("From"); ok {
		sender = v
	}

	content := u.extractor.Extract(ctx, raw)
	body := content.Text
	if body == "" && content.HTML != nil {
		body = *content.HTML
	}

	message := &emaildomain.Message{
		RemoteID:        remoteID,
		AccountID:       account.ID,
		UserID:          account.UserID,
		Subject:         subject,
		Sender:          sender,
		Content:         body,
		ReceivedAt:      raw.InternalDate,
		UnsubscribeLink: content.UnsubscribeLink,
	}
	if err := u.messageRepo.Create(message); err != nil {
		if errors.Is(err, emaildomain.ErrDuplicateMessage) {
			return false, nil
		}
		return false, fmt.Errorf("store: %w", err)
	}

	u.enrichment.Process(ctx, message)

	if u.archive(ctx, src, message) {
		metrics.MessagesIngested.WithLabelValues("stored").Inc()
	}
	return true, nil
}

// archive moves a stored message out of the inbox. A failure is logged and the
// message stays unarchived for the next run.
func (u *syncUsecase) archive(ctx context.Context, src emaildomain.MailSource, message *emaildomain.Message) bool {
	if err := src.Archive(ctx, message.RemoteID); err != nil {
		metrics.MessagesIngested.WithLabelValues("archive_failed").Inc()
		u.log.Warn("archive failed, message kept", zap.String("remote_id", message.RemoteID), zap.Error(err))
		return false
	}
	if err := u.messageRepo.MarkArchived(message.ID); err != nil {
		u.log.Warn("failed to mark message archived", zap.String("message_id", message.ID), zap.Error(err))
	}
	message.IsArchived = true
	return true
}

// RetryDegraded re-enriches messages whose earlier AI calls failed and
// returns how many now succeeded.
func (u *syncUsecase) RetryDegraded(ctx context.Context, limit int) int {
	messages, err := u.messageRepo.FindEnrichmentDegraded(limit)
	if err != nil {
		u.log.Error("failed to load degraded messages", zap.Error(err))
		return 0
	}
	recovered := 0
	for _, m := range messages {
		if ctx.Err() != nil {
			break
		}
		u.enrichment.Process(ctx, m)
		if m.EnrichmentStatus == emaildomain.EnrichmentDone {
			recovered++
		}
	}
	if len(messages) > 0 {
		u.log.Info("retried degraded enrichment", zap.Int("candidates", len(messages)), zap.Int("recovered", recovered))
	}
	return recovered
}
