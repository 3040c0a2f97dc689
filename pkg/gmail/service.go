package gmail

import (
	"context"
	"fmt"
	"sync"
	"time"

	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/pkg/mailsource"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = emaildomain.TokenUpdateFunc

const (
	DefaultPageSize = 50
	inboxLabel      = "INBOX"
)

// Credentials is the stored OAuth pair of one account.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       *time.Time
}

type Service struct {
	clientID     string
	clientSecret string
	endpoint     oauth2.Endpoint
	apiOpts      []option.ClientOption
	pageSize     int64
	log          *zap.Logger
}

type Option func(*Service)

// WithAPIOptions adds client options to every Gmail API client (e.g. a test endpoint).
func WithAPIOptions(opts ...option.ClientOption) Option {
	return func(s *Service) { s.apiOpts = append(s.apiOpts, opts...) }
}

// WithOAuthEndpoint overrides the Google OAuth endpoint.
func WithOAuthEndpoint(ep oauth2.Endpoint) Option {
	return func(s *Service) { s.endpoint = ep }
}

func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = int64(n)
		}
	}
}

func NewService(clientID, clientSecret string, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     google.Endpoint,
		pageSize:     DefaultPageSize,
		log:          log.Named("gmail"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     s.endpoint,
		Scopes:       []string{gmail.GmailModifyScope},
	}
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	mu       sync.Mutex
	current  *oauth2.Token
	callback TokenUpdateFunc
	log      *zap.Logger
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		// Block so the new token is stored before the request goes out.
		if err := s.callback(t); err != nil {
			s.log.Error("failed to persist refreshed token", zap.Error(err))
		}
	}
	return t, nil
}

// Mailbox is one Gmail account bound to its credentials.
type Mailbox struct {
	svc            *Service
	onTokenRefresh TokenUpdateFunc

	mu    sync.Mutex
	token *oauth2.Token
	api   *gmail.Service
}

// Open creates a Mailbox for the given credentials. Tokens refreshed by the
// OAuth transport or by Refresh are handed to onTokenRefresh.
func (s *Service) Open(ctx context.Context, creds Credentials, onTokenRefresh TokenUpdateFunc) (*Mailbox, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}
	if creds.Expiry != nil {
		token.Expiry = *creds.Expiry
	} else if creds.RefreshToken != "" {
		// Unknown expiry: refresh on first use.
		token.Expiry = time.Now()
	}

	m := &Mailbox{svc: s, onTokenRefresh: onTokenRefresh}
	if err := m.connect(ctx, token); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mailbox) connect(ctx context.Context, token *oauth2.Token) error {
	// Wrap token source to detect refreshes
	wrapped := &notifyTokenSource{
		src:      m.svc.oauthConfig().TokenSource(ctx, token),
		current:  token,
		callback: m.onTokenRefresh,
		log:      m.svc.log,
	}
	client := oauth2.NewClient(ctx, wrapped)

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, m.svc.apiOpts...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("unable to create Gmail service: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.api = srv
	m.mu.Unlock()
	return nil
}

func (m *Mailbox) client() *gmail.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.api
}

// Refresh exchanges the refresh token, persists the result and rebuilds the client.
func (m *Mailbox) Refresh(ctx context.Context) error {
	m.mu.Lock()
	refreshToken := m.token.RefreshToken
	m.mu.Unlock()

	token, err := mailsource.RefreshToken(ctx, m.svc.oauthConfig(), refreshToken, m.onTokenRefresh)
	if err != nil {
		return err
	}
	return m.connect(ctx, token)
}

// ListNew lists inbox message ids received after since. Only the first page is read.
func (m *Mailbox) ListNew(ctx context.Context, since time.Time) ([]string, error) {
	resp, err := m.client().Users.Messages.List("me").
		LabelIds(inboxLabel).
		Q(fmt.Sprintf("after:%d", since.Unix())).
		MaxResults(m.svc.pageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

func (m *Mailbox) Fetch(ctx context.Context, remoteID string) (*emaildomain.RawMessage, error) {
	msg, err := m.client().Users.Messages.Get("me", remoteID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get message %s: %w", remoteID, err)
	}
	return convertGmailMessage(msg), nil
}

// Archive archives an email (removes INBOX label)
func (m *Mailbox) Archive(ctx context.Context, remoteID string) error {
	modifyReq := &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{inboxLabel},
	}
	if _, err := m.client().Users.Messages.Modify("me", remoteID, modifyReq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to archive message: %w", err)
	}
	return nil
}

// Watch sets up push notifications for the inbox and returns the current history id.
func (m *Mailbox) Watch(ctx context.Context, topicName string) (uint64, error) {
	api := m.client()

	// Clear any previous watch; Gmail allows one push client per user.
	_ = api.Users.Stop("me").Context(ctx).Do()

	resp, err := api.Users.Watch("me", &gmail.WatchRequest{
		TopicName: topicName,
		LabelIds:  []string{inboxLabel},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to watch mailbox: %w", err)
	}
	m.svc.log.Info("watch started",
		zap.Int64("expiration", resp.Expiration),
		zap.Uint64("history_id", resp.HistoryId))
	return resp.HistoryId, nil
}

// Stop stops push notifications for the user's mailbox
func (m *Mailbox) Stop(ctx context.Context) error {
	if err := m.client().Users.Stop("me").Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to stop mailbox watch: %w", err)
	}
	return nil
}

// Helper functions

func convertGmailMessage(msg *gmail.Message) *emaildomain.RawMessage {
	raw := &emaildomain.RawMessage{
		RemoteID:     msg.Id,
		InternalDate: time.UnixMilli(msg.InternalDate),
	}
	if msg.Payload != nil {
		raw.Headers = convertHeaders(msg.Payload.Headers)
		raw.Payload = convertPart(msg.Payload)
	}
	return raw
}

func convertHeaders(headers []*gmail.MessagePartHeader) []emaildomain.Header {
	out := make([]emaildomain.Header, 0, len(headers))
	for _, h := range headers {
		out = append(out, emaildomain.Header{Name: h.Name, Value: h.Value})
	}
	return out
}

func convertPart(part *gmail.MessagePart) *emaildomain.MessagePart {
	out := &emaildomain.MessagePart{
		MimeType: part.MimeType,
		Headers:  convertHeaders(part.Headers),
	}
	if part.Body != nil {
		out.Data = part.Body.Data
	}
	for _, child := range part.Parts {
		out.Parts = append(out.Parts, convertPart(child))
	}
	return out
}
