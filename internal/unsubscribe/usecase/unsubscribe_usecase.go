package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/internal/email/repository"
	"mailsweep/pkg/activitylog"
	"mailsweep/pkg/ai"
	"mailsweep/pkg/browseragent"
	"mailsweep/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinConfidence is the lowest judged confidence accepted as a success.
const MinConfidence = 0.8

type unsubscribeUsecase struct {
	messageRepo repository.MessageRepository
	agent       browseragent.Runner
	judge       ai.Completer
	now         func() time.Time
	log         *zap.Logger
}

// NewUnsubscribeUsecase creates a new unsubscribe usecase instance
func NewUnsubscribeUsecase(messageRepo repository.MessageRepository, agent browseragent.Runner, judge ai.Completer, log *zap.Logger) UnsubscribeUsecase {
	return &unsubscribeUsecase{
		messageRepo: messageRepo,
		agent:       agent,
		judge:       judge,
		now:         time.Now,
		log:         log.Named("unsubscribe"),
	}
}

func (u *unsubscribeUsecase) TriggerUnsubscribe(ctx context.Context, userID, messageID, url string) (*Outcome, error) {
	message, err := u.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, emaildomain.ErrMessageNotFound
	}
	if message.UserID != userID {
		return nil, emaildomain.ErrForbidden
	}

	url = strings.TrimSpace(url)
	if url == "" && message.UnsubscribeLink != nil {
		url = *message.UnsubscribeLink
	}
	if url == "" {
		return nil, ErrNoUnsubscribeLink
	}
	if strings.HasPrefix(strings.ToLower(url), "mailto:") {
		if err := u.messageRepo.UpdateUnsubscribeStatus(messageID, emaildomain.UnsubscribeFailed, nil); err != nil {
			return nil, fmt.Errorf("record unsubscribe status: %w", err)
		}
		metrics.UnsubscribeOutcomes.WithLabelValues(string(emaildomain.UnsubscribeFailed)).Inc()
		return &Outcome{
			MessageID: messageID,
			Status:    emaildomain.UnsubscribeFailed,
			Reason:    "mailto targets need an email, not a browser",
		}, nil
	}

	outcome := &Outcome{MessageID: messageID, Status: emaildomain.UnsubscribeFailed}
	if u.Unsubscribe(ctx, messageID, url) {
		outcome.Status = emaildomain.UnsubscribeSuccess
	}
	return outcome, nil
}

func (u *unsubscribeUsecase) Unsubscribe(ctx context.Context, messageID, url string) bool {
	agentID := uuid.New().String()
	log := u.log.With(
		zap.String(activitylog.TaskIDKey, messageID),
		zap.String(activitylog.AgentIDKey, agentID),
	)

	message, err := u.messageRepo.FindByID(messageID)
	if err != nil || message == nil {
		log.Error("message not found", zap.Error(err))
		return false
	}

	log.Info("starting unsubscribe", zap.String("url", url))
	if err := u.messageRepo.UpdateUnsubscribeStatus(messageID, emaildomain.UnsubscribePending, nil); err != nil {
		log.Error("failed to mark unsubscribe pending", zap.Error(err))
		return false
	}

	success := false
	verdict, err := u.attempt(ctx, log, url, message.Sender)
	if err != nil {
		log.Error("unsubscribe attempt failed", zap.Error(err))
	} else {
		success = verdict.Success && verdict.Confidence >= MinConfidence
		log.Info("unsubscribe judged",
			zap.Bool("success", verdict.Success),
			zap.Float64("confidence", verdict.Confidence),
			zap.String("reason", verdict.Reason))
	}

	// The record may have changed or vanished while the agent ran.
	current, err := u.messageRepo.FindByID(messageID)
	if err != nil || current == nil {
		log.Error("message disappeared during unsubscribe", zap.Error(err))
		return false
	}

	status := emaildomain.UnsubscribeFailed
	var at *time.Time
	if success {
		status = emaildomain.UnsubscribeSuccess
		now := u.now()
		at = &now
	}
	if err := u.messageRepo.UpdateUnsubscribeStatus(messageID, status, at); err != nil {
		log.Error("failed to save unsubscribe status", zap.Error(err))
		return false
	}
	metrics.UnsubscribeOutcomes.WithLabelValues(string(status)).Inc()

	if success {
		log.Info("unsubscribed")
	} else {
		log.Warn("could not verify unsubscribe")
	}
	return success
}

// attempt runs the browser agent and asks the judge model about its transcript.
func (u *unsubscribeUsecase) attempt(ctx context.Context, log *zap.Logger, url, sender string) (verdict *Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	result, err := u.agent.Run(ctx, browseragent.Task{URL: url, Instructions: taskScript(url, sender)})
	if err != nil {
		return nil, fmt.Errorf("browser agent: %w", err)
	}
	log.Info("browser agent finished", zap.Int("steps", result.Steps))
	log.Debug("browser agent transcript", zap.String("transcript", result.Transcript))

	reply, err := u.judge.Complete(ctx, ai.Request{
		Prompt: judgmentPrompt(result.Transcript),
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("judgment call: %w", err)
	}
	return parseVerdict(reply)
}

func taskScript(url, sender string) string {
	return fmt.Sprintf(`Navigate to %s and complete the unsubscribe process. Follow these steps:
1. Wait for the page to load completely
2. Look for unsubscribe elements like:
   - "Unsubscribe" or "Confirm" buttons
   - Email input fields (use %s if needed)
   - Checkboxes to confirm unsubscribe
   - Dropdown menus for unsubscribe reasons
3. Complete any required forms or confirmations
4. Verify the unsubscribe was successful by looking for confirmation messages
5. Return 'true' if successful, 'false' if not successful`, url, sender)
}

func judgmentPrompt(transcript string) string {
	return fmt.Sprintf(`Analyze this browser automation result and determine if the unsubscribe process was truly successful.
Consider:
1. Was the unsubscribe URL successfully accessed?
2. Were any unsubscribe buttons or forms found and interacted with?
3. Was there a clear confirmation message?
4. Were there any errors or warnings?
5. Did the process complete all necessary steps?

Browser interaction result:
%s

Respond with a JSON object containing:
- success: boolean indicating if unsubscribe was successful
- confidence: number between 0-1 indicating confidence in the assessment
- reason: string explaining why you made this determination`, transcript)
}

func parseVerdict(reply string) (*Verdict, error) {
	var v Verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &v); err != nil {
		return nil, fmt.Errorf("malformed verdict: %w", err)
	}
	return &v, nil
}
