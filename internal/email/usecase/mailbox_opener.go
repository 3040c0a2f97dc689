package usecase

import (
	"context"
	"fmt"

	accountdomain "mailsweep/internal/account/domain"
	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/pkg/gmail"
	"mailsweep/pkg/imap"
	"mailsweep/pkg/mailsource"

	"go.uber.org/zap"
)

// TokenUpdaterFunc returns the callback that persists refreshed tokens for an account.
type TokenUpdaterFunc func(accountID string) emaildomain.TokenUpdateFunc

type mailboxOpener struct {
	gmail        *gmail.Service
	imap         *imap.Service
	tokenUpdater TokenUpdaterFunc
	log          *zap.Logger
}

// NewMailboxOpener picks the adapter by account provider. Either service may
// be nil when that provider is not configured.
func NewMailboxOpener(gmailSvc *gmail.Service, imapSvc *imap.Service, tokenUpdater TokenUpdaterFunc, log *zap.Logger) MailboxOpener {
	return &mailboxOpener{
		gmail:        gmailSvc,
		imap:         imapSvc,
		tokenUpdater: tokenUpdater,
		log:          log.Named("mailbox"),
	}
}

func (o *mailboxOpener) Open(ctx context.Context, account *accountdomain.MailboxAccount) (emaildomain.MailSource, error) {
	onRefresh := o.tokenUpdater(account.ID)
	log := o.log.With(zap.String("account", account.Email))

	var src mailsource.Refreshable
	switch account.Provider {
	case accountdomain.ProviderGmail, "":
		if o.gmail == nil {
			return nil, fmt.Errorf("gmail provider is not configured")
		}
		mb, err := o.gmail.Open(ctx, gmail.Credentials{
			AccessToken:  account.AccessToken,
			RefreshToken: account.RefreshToken,
			Expiry:       account.TokenExpiry,
		}, onRefresh)
		if err != nil {
			return nil, err
		}
		src = mb
	case accountdomain.ProviderIMAP:
		if o.imap == nil {
			return nil, fmt.Errorf("imap provider is not configured")
		}
		src = o.imap.Open(imap.Account{
			Host:         account.IMAPHost,
			Port:         account.IMAPPort,
			Email:        account.Email,
			AccessToken:  account.AccessToken,
			RefreshToken: account.RefreshToken,
			Expiry:       account.TokenExpiry,
		}, onRefresh)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", account.Provider)
	}
	return mailsource.WithAuthRetry(src, log), nil
}
