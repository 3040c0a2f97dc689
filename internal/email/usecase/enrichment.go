package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/internal/email/repository"
	"mailsweep/pkg/ai"
	"mailsweep/pkg/metrics"

	"go.uber.org/zap"
)

var digitsPattern = regexp.MustCompile(`\d+`)

type enricher struct {
	llm          ai.Completer
	categoryRepo repository.CategoryRepository
	messageRepo  repository.MessageRepository
	log          *zap.Logger
}

// NewEnrichmentService creates the summarizer/classifier used by the sync loop
func NewEnrichmentService(llm ai.Completer, categoryRepo repository.CategoryRepository, messageRepo repository.MessageRepository, log *zap.Logger) EnrichmentService {
	return &enricher{
		llm:          llm,
		categoryRepo: categoryRepo,
		messageRepo:  messageRepo,
		log:          log.Named("enrichment"),
	}
}

// Summarize never fails; provider errors yield SummaryErrorText.
func (e *enricher) Summarize(ctx context.Context, body, subject string) string {
	summary, err := e.summarize(ctx, body, subject)
	if err != nil {
		return emaildomain.SummaryErrorText
	}
	return summary
}

func (e *enricher) summarize(ctx context.Context, body, subject string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this email concisely in 2-3 sentences. Focus on the main points and any action items.

Subject: %s

Content:
%s

Provide only the summary, no additional text.`, subject, body)

	reply, err := e.llm.Complete(ctx, ai.Request{
		System:      "You are a precise email summarizer that creates concise, informative summaries.",
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   150,
	})
	if err != nil {
		e.log.Error("summarize failed", zap.Error(err))
		metrics.EnrichmentResults.WithLabelValues("summary", "failed").Inc()
		return "", err
	}
	metrics.EnrichmentResults.WithLabelValues("summary", "ok").Inc()
	return strings.TrimSpace(reply), nil
}

// Classify returns the chosen category id, or nil when nothing fits or the
// provider fails.
func (e *enricher) Classify(ctx context.Context, body string, categories []*emaildomain.Category) *string {
	id, _ := e.classify(ctx, body, categories)
	return id
}

func (e *enricher) classify(ctx context.Context, body string, categories []*emaildomain.Category) (*string, error) {
	if len(categories) == 0 {
		e.log.Debug("no categories available for classification")
		return nil, nil
	}

	var list strings.Builder
	for i, c := range categories {
		description := ""
		if c.Description != nil {
			description = *c.Description
		}
		fmt.Fprintf(&list, "Category %d: %s - %s\n", i+1, c.Name, description)
	}

	prompt := fmt.Sprintf(`You are an email classifier. Your task is to classify the following email into one of these categories:

%s
The email content is:
%s

Analyze the email and choose the most appropriate category. If none of the categories fit well, return "None".
IMPORTANT: Only respond with the numeric ID (e.g., "3") or "None". Do not include the word "Category" or any other text.`, list.String(), body)

	reply, err := e.llm.Complete(ctx, ai.Request{
		System:      "You are a precise email classifier that only responds with numeric IDs or None.",
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   10,
	})
	if err != nil {
		e.log.Error("classify failed", zap.Error(err))
		metrics.EnrichmentResults.WithLabelValues("classify", "failed").Inc()
		return nil, err
	}

	pos, ok := parseClassification(reply, len(categories))
	if !ok {
		if !strings.EqualFold(strings.TrimSpace(reply), "none") {
			e.log.Warn("classifier returned unusable answer", zap.String("reply", reply))
		}
		metrics.EnrichmentResults.WithLabelValues("classify", "none").Inc()
		return nil, nil
	}
	metrics.EnrichmentResults.WithLabelValues("classify", "ok").Inc()
	id := categories[pos-1].ID
	return &id, nil
}

// parseClassification reads the first run of digits in reply as a 1-based
// position among n categories.
func parseClassification(reply string, n int) (int, bool) {
	reply = strings.TrimSpace(reply)
	if strings.EqualFold(reply, "none") {
		return 0, false
	}
	digits := digitsPattern.FindString(reply)
	if digits == "" {
		return 0, false
	}
	pos, err := strconv.Atoi(digits)
	if err != nil || pos < 1 || pos > n {
		return 0, false
	}
	return pos, true
}

func (e *enricher) FindUnsubscribeLink(ctx context.Context, body string) *string {
	link, _ := e.findUnsubscribeLink(ctx, body)
	return link
}

func (e *enricher) findUnsubscribeLink(ctx context.Context, body string) (*string, error) {
	prompt := fmt.Sprintf(`Find the unsubscribe link or instructions in this email. If found, return ONLY the complete URL or instructions. If not found, return "None".

Email content:
%s

Return only the unsubscribe URL or instructions, or "None". No other text.`, body)

	reply, err := e.llm.Complete(ctx, ai.Request{
		System:      "You are an unsubscribe link finder that only returns URLs or None.",
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   100,
	})
	if err != nil {
		e.log.Error("unsubscribe link lookup failed", zap.Error(err))
		metrics.EnrichmentResults.WithLabelValues("link", "failed").Inc()
		return nil, err
	}
	result := strings.TrimSpace(reply)
	if result == "" || strings.EqualFold(result, "none") {
		return nil, nil
	}
	return &result, nil
}

// Process summarizes and classifies a stored message and saves both in one
// update. Errors are logged; the message is marked degraded when any AI call failed.
func (e *enricher) Process(ctx context.Context, message *emaildomain.Message) {
	log := e.log.With(zap.String("message_id", message.ID))

	categories, err := e.categoryRepo.FindByUserID(message.UserID)
	if err != nil {
		log.Error("failed to load categories", zap.Error(err))
	}

	degraded := err != nil

	summary, err := e.summarize(ctx, message.Content, message.Subject)
	if err != nil {
		summary = emaildomain.SummaryErrorText
		degraded = true
	}

	categoryID, err := e.classify(ctx, message.Content, categories)
	if err != nil {
		degraded = true
	}

	link := message.UnsubscribeLink
	if link == nil && message.Content != "" {
		found, err := e.findUnsubscribeLink(ctx, message.Content)
		if err != nil {
			degraded = true
		}
		// Free-text instructions are not actionable by the unsubscribe agent.
		if found != nil {
			link = acceptLink(*found)
		}
	}

	status := emaildomain.EnrichmentDone
	if degraded {
		status = emaildomain.EnrichmentDegraded
	}

	update := repository.EnrichmentUpdate{
		Summary:         &summary,
		CategoryID:      categoryID,
		UnsubscribeLink: link,
		Status:          status,
	}
	if err := e.messageRepo.SaveEnrichment(message.ID, update); err != nil {
		log.Error("failed to save enrichment", zap.Error(err))
		return
	}

	message.Summary = &summary
	message.CategoryID = categoryID
	message.UnsubscribeLink = link
	message.EnrichmentStatus = status
	log.Info("message enriched",
		zap.String("status", string(status)),
		zap.Bool("categorized", categoryID != nil))
}
