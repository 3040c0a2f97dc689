package domain

import (
	"context"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// TokenUpdateFunc is called whenever a mail source obtains a new OAuth token.
type TokenUpdateFunc func(token *oauth2.Token) error

type Header struct {
	Name  string
	Value string
}

// MessagePart is a node of a MIME tree. Data holds the body base64url-encoded,
// the same convention Gmail uses on the wire.
type MessagePart struct {
	MimeType string
	Headers  []Header
	Data     string
	Parts    []*MessagePart
}

// RawMessage is a fetched message before extraction.
type RawMessage struct {
	RemoteID     string
	InternalDate time.Time
	Headers      []Header
	Payload      *MessagePart
}

// Header returns the first header matching name case-insensitively.
func (m *RawMessage) Header(name string) (string, bool) {
	return findHeader(m.Headers, name)
}

func findHeader(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// MailSource is one remote mailbox bound to a single account's credentials.
type MailSource interface {
	// ListNew returns ids of inbox messages received after since, one page only.
	ListNew(ctx context.Context, since time.Time) ([]string, error)
	Fetch(ctx context.Context, remoteID string) (*RawMessage, error)
	// Archive is idempotent.
	Archive(ctx context.Context, remoteID string) error
}
