package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	accountdomain "mailsweep/internal/account/domain"
	accountrepo "mailsweep/internal/account/repository"
	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/pkg/gmail"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const defaultTopic = "gmail-updates"

type GmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// Trigger queues a sync for one account. Implemented by the sync scheduler.
type Trigger interface {
	Trigger(accountEmail string) bool
}

// TokenUpdaterFunc returns the callback that persists refreshed tokens for an account.
type TokenUpdaterFunc func(accountID string) emaildomain.TokenUpdateFunc

type Service struct {
	pubsubClient *pubsub.Client
	handler      *handler
	gmailService *gmail.Service
	tokenUpdater TokenUpdaterFunc
	projectID    string
	topicName    string
	subName      string
	log          *zap.Logger
}

// NewService connects to Pub/Sub. topic may be a short name or a full
// projects/<id>/topics/<name> resource.
func NewService(ctx context.Context, projectID, topic, credentialsFile string, accountRepo accountrepo.MailboxAccountRepository, trigger Trigger, gmailService *gmail.Service, tokenUpdater TokenUpdaterFunc, log *zap.Logger) (*Service, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	topicName := shortTopicName(topic)
	log = log.Named("notification")
	return &Service{
		pubsubClient: client,
		handler:      newHandler(accountRepo, trigger, log),
		gmailService: gmailService,
		tokenUpdater: tokenUpdater,
		projectID:    projectID,
		topicName:    topicName,
		subName:      topicName + "-sub",
		log:          log,
	}, nil
}

func shortTopicName(topic string) string {
	if parts := strings.Split(topic, "/"); len(parts) > 1 {
		topic = parts[len(parts)-1]
	}
	if topic == "" {
		topic = defaultTopic
	}
	return topic
}

// topicPath is the fully qualified name Gmail expects in a watch request.
func (s *Service) topicPath() string {
	return fmt.Sprintf("projects/%s/topics/%s", s.projectID, s.topicName)
}

// Start registers watches and then blocks receiving notifications until ctx ends.
func (s *Service) Start(ctx context.Context) {
	s.WatchAll(ctx)

	s.log.Info("starting notification service",
		zap.String("topic", s.topicName),
		zap.String("subscription", s.subName))

	sub, err := s.subscription(ctx)
	if err != nil {
		s.log.Error("pubsub subscription unavailable", zap.Error(err))
		return
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handler.handle(msg.Data)
		msg.Ack()
	})
	if err != nil {
		s.log.Error("error receiving messages", zap.Error(err))
	}
}

// Close releases the Pub/Sub client.
func (s *Service) Close() error {
	return s.pubsubClient.Close()
}

func (s *Service) subscription(ctx context.Context) (*pubsub.Subscription, error) {
	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking subscription: %w", err)
	}
	if exists {
		return sub, nil
	}

	topic := s.pubsubClient.Topic(s.topicName)
	topicExists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking topic: %w", err)
	}
	if !topicExists {
		return nil, fmt.Errorf("topic %s does not exist", s.topicName)
	}

	sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("creating subscription: %w", err)
	}
	s.log.Info("created subscription", zap.String("subscription", s.subName))
	return sub, nil
}

// WatchAll registers a Gmail push watch for every Gmail account and stores the
// returned history id as the dedupe baseline.
func (s *Service) WatchAll(ctx context.Context) {
	if s.gmailService == nil {
		return
	}
	accounts, err := s.handler.accountRepo.FindAll()
	if err != nil {
		s.log.Error("failed to list accounts for watch", zap.Error(err))
		return
	}
	for _, account := range accounts {
		if account.Provider != accountdomain.ProviderGmail && account.Provider != "" {
			continue
		}
		if err := s.watch(ctx, account); err != nil {
			s.log.Warn("watch failed", zap.String("account", account.Email), zap.Error(err))
		}
	}
}

func (s *Service) watch(ctx context.Context, account *accountdomain.MailboxAccount) error {
	mb, err := s.gmailService.Open(ctx, gmail.Credentials{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		Expiry:       account.TokenExpiry,
	}, s.tokenUpdater(account.ID))
	if err != nil {
		return err
	}
	historyID, err := mb.Watch(ctx, s.topicPath())
	if err != nil {
		return err
	}
	if historyID > account.HistoryID {
		return s.handler.accountRepo.UpdateHistoryID(account.ID, historyID)
	}
	return nil
}

type handler struct {
	accountRepo accountrepo.MailboxAccountRepository
	trigger     Trigger
	log         *zap.Logger
}

func newHandler(accountRepo accountrepo.MailboxAccountRepository, trigger Trigger, log *zap.Logger) *handler {
	return &handler{accountRepo: accountRepo, trigger: trigger, log: log}
}

// handle reports whether a sync was queued. Malformed, unknown and
// already-seen notifications are dropped.
func (h *handler) handle(data []byte) bool {
	var n GmailNotification
	if err := json.Unmarshal(data, &n); err != nil {
		h.log.Warn("failed to unmarshal notification", zap.Error(err))
		return false
	}
	log := h.log.With(zap.String("account", n.EmailAddress), zap.Uint64("history_id", n.HistoryID))

	account, err := h.accountRepo.FindByEmail(n.EmailAddress)
	if err != nil {
		log.Error("error finding account", zap.Error(err))
		return false
	}
	if account == nil {
		log.Debug("notification for unknown account")
		return false
	}

	if n.HistoryID <= account.HistoryID {
		log.Debug("skipping duplicate notification", zap.Uint64("last", account.HistoryID))
		return false
	}
	if err := h.accountRepo.UpdateHistoryID(account.ID, n.HistoryID); err != nil {
		log.Error("failed to store history id", zap.Error(err))
		return false
	}

	log.Info("push notification received")
	return h.trigger.Trigger(account.Email)
}
