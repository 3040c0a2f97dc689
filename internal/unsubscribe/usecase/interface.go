package usecase

import (
	"context"
	"errors"

	emaildomain "mailsweep/internal/email/domain"
)

var ErrNoUnsubscribeLink = errors.New("message has no unsubscribe link")

// Outcome is the result reported to a caller of TriggerUnsubscribe.
type Outcome struct {
	MessageID string                        `json:"message_id"`
	Status    emaildomain.UnsubscribeStatus `json:"status"`
	Reason    string                        `json:"reason,omitempty"`
}

// Verdict is the judgment model's reading of an agent transcript.
type Verdict struct {
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// UnsubscribeUsecase drives the browser agent through an unsubscribe page and
// records the judged outcome on the message.
type UnsubscribeUsecase interface {
	// Unsubscribe runs the full flow and reports success. It never returns an
	// error; every failure resolves to the failed status.
	Unsubscribe(ctx context.Context, messageID, url string) bool
	// TriggerUnsubscribe checks ownership and picks the stored link when url is empty
	TriggerUnsubscribe(ctx context.Context, userID, messageID, url string) (*Outcome, error)
}
