package imap

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	emaildomain "mailsweep/internal/email/domain"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// parseMessage turns an RFC 5322 message into the same MIME tree shape the
// Gmail API returns: inline parts decoded and re-encoded as base64url.
func parseMessage(remoteID string, internalDate time.Time, r io.Reader) (*emaildomain.RawMessage, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse message %s: %w", remoteID, err)
	}
	defer mr.Close()

	headers := collectHeaders(mr.Header)
	rootType, _, _ := mr.Header.ContentType()
	if rootType == "" {
		rootType = "text/plain"
	}

	root := &emaildomain.MessagePart{MimeType: rootType, Headers: headers}
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read part of %s: %w", remoteID, err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		body, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("read body of %s: %w", remoteID, err)
		}
		partType, _, _ := h.ContentType()
		if partType == "" {
			partType = "text/plain"
		}
		data := base64.URLEncoding.EncodeToString(body)

		if !strings.HasPrefix(rootType, "multipart/") {
			root.Data = data
			break
		}
		root.Parts = append(root.Parts, &emaildomain.MessagePart{MimeType: partType, Data: data})
	}

	return &emaildomain.RawMessage{
		RemoteID:     remoteID,
		InternalDate: internalDate,
		Headers:      headers,
		Payload:      root,
	}, nil
}

func collectHeaders(h mail.Header) []emaildomain.Header {
	var out []emaildomain.Header
	fields := h.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		out = append(out, emaildomain.Header{Name: fields.Key(), Value: value})
	}
	return out
}
