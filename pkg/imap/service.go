package imap

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/pkg/mailsource"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultPort     = 993
	DefaultPageSize = 50
	inboxMailbox    = "INBOX"
)

type Service struct {
	oauth          *oauth2.Config
	archiveMailbox string
	pageSize       int
	log            *zap.Logger
}

func NewService(oauth *oauth2.Config, archiveMailbox string, pageSize int, log *zap.Logger) *Service {
	if archiveMailbox == "" {
		archiveMailbox = "Archive"
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		oauth:          oauth,
		archiveMailbox: archiveMailbox,
		pageSize:       pageSize,
		log:            log.Named("imap"),
	}
}

// Account identifies the mailbox to open.
type Account struct {
	Host         string
	Port         int
	Email        string
	AccessToken  string
	RefreshToken string
	Expiry       *time.Time
}

// Mailbox is one IMAP account authenticated with OAUTHBEARER. The connection
// is dialed lazily and reused until Close or Refresh.
type Mailbox struct {
	svc            *Service
	account        Account
	onTokenRefresh emaildomain.TokenUpdateFunc

	mu sync.Mutex
	c  *client.Client
}

func (s *Service) Open(account Account, onTokenRefresh emaildomain.TokenUpdateFunc) *Mailbox {
	if account.Port == 0 {
		account.Port = DefaultPort
	}
	return &Mailbox{svc: s, account: account, onTokenRefresh: onTokenRefresh}
}

func (m *Mailbox) conn(ctx context.Context) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.c != nil {
		return m.c, nil
	}

	if m.account.Expiry != nil && time.Now().After(*m.account.Expiry) && m.account.RefreshToken != "" {
		if err := m.refreshLocked(ctx); err != nil {
			return nil, err
		}
	}

	addr := net.JoinHostPort(m.account.Host, strconv.Itoa(m.account.Port))
	c, err := client.DialWithDialerTLS(&net.Dialer{Timeout: 30 * time.Second}, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", addr, err)
	}
	c.Timeout = 60 * time.Second

	auth := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
		Username: m.account.Email,
		Token:    m.account.AccessToken,
		Host:     m.account.Host,
		Port:     m.account.Port,
	})
	if err := c.Authenticate(auth); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("%w: %v", mailsource.ErrAuth, err)
	}

	m.c = c
	return c, nil
}

// Refresh renews the access token, persists it and drops the current connection.
func (m *Mailbox) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *Mailbox) refreshLocked(ctx context.Context) error {
	token, err := mailsource.RefreshToken(ctx, m.svc.oauth, m.account.RefreshToken, m.onTokenRefresh)
	if err != nil {
		return err
	}
	m.account.AccessToken = token.AccessToken
	m.account.RefreshToken = token.RefreshToken
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		m.account.Expiry = &expiry
	}
	if m.c != nil {
		_ = m.c.Logout()
		m.c = nil
	}
	return nil
}

func (m *Mailbox) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.c == nil {
		return nil
	}
	err := m.c.Logout()
	m.c = nil
	return err
}

// ListNew returns the UIDs of inbox messages with INTERNALDATE after since,
// oldest first, keeping only the newest page.
func (m *Mailbox) ListNew(ctx context.Context, since time.Time) ([]string, error) {
	c, err := m.conn(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := c.Select(inboxMailbox, true); err != nil {
		return nil, fmt.Errorf("imap select: %w", err)
	}

	// SINCE has day granularity; the exact cut happens on INTERNALDATE below.
	criteria := imap.NewSearchCriteria()
	criteria.Since = since.Truncate(24 * time.Hour)
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, []imap.FetchItem{imap.FetchUid, imap.FetchInternalDate}, messages)
	}()

	var fresh []uint32
	for msg := range messages {
		if msg.InternalDate.After(since) {
			fresh = append(fresh, msg.Uid)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch dates: %w", err)
	}

	sort.Slice(fresh, func(i, j int) bool { return fresh[i] < fresh[j] })
	if len(fresh) > m.svc.pageSize {
		fresh = fresh[len(fresh)-m.svc.pageSize:]
	}

	ids := make([]string, 0, len(fresh))
	for _, uid := range fresh {
		ids = append(ids, strconv.FormatUint(uint64(uid), 10))
	}
	return ids, nil
}

func (m *Mailbox) Fetch(ctx context.Context, remoteID string) (*emaildomain.RawMessage, error) {
	uid, err := parseUID(remoteID)
	if err != nil {
		return nil, err
	}
	c, err := m.conn(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := c.Select(inboxMailbox, true); err != nil {
		return nil, fmt.Errorf("imap select: %w", err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	section := &imap.BodySectionName{Peek: true}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, []imap.FetchItem{section.FetchItem(), imap.FetchInternalDate, imap.FetchUid}, messages)
	}()

	var raw *emaildomain.RawMessage
	var parseErr error
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, parseErr = parseMessage(remoteID, msg.InternalDate, body)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch %s: %w", remoteID, err)
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if raw == nil {
		return nil, fmt.Errorf("imap message %s not found", remoteID)
	}
	return raw, nil
}

// Archive moves the message out of the inbox. Moving a UID that is no longer
// in the inbox is a no-op on the server.
func (m *Mailbox) Archive(ctx context.Context, remoteID string) error {
	uid, err := parseUID(remoteID)
	if err != nil {
		return err
	}
	c, err := m.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := c.Select(inboxMailbox, false); err != nil {
		return fmt.Errorf("imap select: %w", err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	if err := c.UidMove(seqset, m.svc.archiveMailbox); err != nil {
		return fmt.Errorf("imap move to %s: %w", m.svc.archiveMailbox, err)
	}
	return nil
}

func parseUID(remoteID string) (uint32, error) {
	uid, err := strconv.ParseUint(remoteID, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid imap uid %q: %w", remoteID, err)
	}
	return uint32(uid), nil
}
