package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mailsweep/cmd/app"
	accountRepo "mailsweep/internal/account/repository"
	accountUsecase "mailsweep/internal/account/usecase"
	emailRepo "mailsweep/internal/email/repository"
	"mailsweep/internal/email/scheduler"
	emailUsecase "mailsweep/internal/email/usecase"
	"mailsweep/internal/notification"
	"mailsweep/internal/schema"
	unsubscribeUsecase "mailsweep/internal/unsubscribe/usecase"
	"mailsweep/pkg/activitylog"
	"mailsweep/pkg/ai"
	"mailsweep/pkg/browseragent"
	"mailsweep/pkg/config"
	"mailsweep/pkg/database"
	"mailsweep/pkg/gmail"
	"mailsweep/pkg/imap"
	"mailsweep/pkg/logger"
	"mailsweep/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// IMAP XOAUTH/OAUTHBEARER against Gmail needs the full mail scope.
const imapScope = "https://mail.google.com/"

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, app.ErrUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()

	activity := activitylog.NewBuffer(cfg.ActivityLogCapacity)
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, activity)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewConnection(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := schema.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := accountRepo.NewUserRepository(db)
	accountRepository := accountRepo.NewMailboxAccountRepository(db)
	categoryRepository := emailRepo.NewCategoryRepository(db)
	messageRepository := emailRepo.NewMessageRepository(db)

	llm, err := ai.NewCompleter(ctx, ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize AI service: %w", err)
	}

	agent, err := browseragent.New(browseragent.Config{
		Kind:     cfg.BrowserAgent,
		URL:      cfg.BrowserAgentURL,
		Model:    cfg.BrowserAgentModel,
		Headless: cfg.BrowserHeadless,
		MaxSteps: cfg.BrowserMaxSteps,
	}, llm, log)
	if err != nil {
		return fmt.Errorf("failed to initialize browser agent: %w", err)
	}

	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, log, gmail.WithPageSize(cfg.SyncPageSize))
	imapService := imap.NewService(&oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{imapScope},
	}, cfg.IMAPArchiveMailbox, cfg.SyncPageSize, log)

	// Initialize use cases (dependency injection)
	accounts := accountUsecase.NewAccountUsecase(userRepository, accountRepository, log)
	categories := emailUsecase.NewCategoryUsecase(categoryRepository, messageRepository, log)
	opener := emailUsecase.NewMailboxOpener(gmailService, imapService, accounts.TokenUpdater, log)
	extractor := emailUsecase.NewExtractor(llm, log)
	enrichment := emailUsecase.NewEnrichmentService(llm, categoryRepository, messageRepository, log)
	syncer := emailUsecase.NewSyncUsecase(accountRepository, messageRepository, opener, extractor, enrichment, log,
		emailUsecase.WithPageSize(cfg.SyncPageSize))
	unsubscribe := unsubscribeUsecase.NewUnsubscribeUsecase(messageRepository, agent, llm, log)

	worker := func(ctx context.Context) error {
		if cfg.MetricsAddr != "" {
			go metrics.Serve(ctx, cfg.MetricsAddr, log)
		}

		syncScheduler := scheduler.NewSyncScheduler(syncer, cfg.SyncInterval, log)
		syncScheduler.Start(ctx)
		defer syncScheduler.Stop()

		// Push notifications are optional; polling covers every account anyway.
		if cfg.GoogleProjectID != "" {
			notifService, err := notification.NewService(ctx, cfg.GoogleProjectID, cfg.GooglePubSubTopic, cfg.GoogleCredentials,
				accountRepository, syncScheduler, gmailService, accounts.TokenUpdater, log)
			if err != nil {
				log.Error("failed to initialize notification service", zap.Error(err))
			} else {
				defer notifService.Close()
				go notifService.Start(ctx)
			}
		} else {
			log.Info("GOOGLE_PROJECT_ID not configured, push notifications disabled")
		}

		<-ctx.Done()
		log.Info("shutting down")
		return nil
	}

	cli := &app.App{
		Accounts:    accounts,
		Categories:  categories,
		Unsubscribe: unsubscribe,
		Activity:    emailUsecase.NewActivityUsecase(activity),
		Worker:      worker,
		Out:         os.Stdout,
	}
	return cli.Run(ctx, os.Args[1:])
}
