package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/pkg/ai"

	"go.uber.org/zap"
)

const (
	listUnsubscribeHeader = "List-Unsubscribe"
	linkScanChars         = 2000
)

var (
	headerURLPattern    = regexp.MustCompile(`<(https?://[^>]+)>`)
	headerMailtoPattern = regexp.MustCompile(`<mailto:([^>]+)>`)
)

// ExtractedContent is the decoded body of a message plus its unsubscribe target.
type ExtractedContent struct {
	Text            string
	HTML            *string
	UnsubscribeLink *string
}

// Extractor decodes message bodies and resolves unsubscribe links.
type Extractor struct {
	llm ai.Completer
	log *zap.Logger
}

func NewExtractor(llm ai.Completer, log *zap.Logger) *Extractor {
	return &Extractor{llm: llm, log: log.Named("extractor")}
}

func (e *Extractor) Extract(ctx context.Context, raw *emaildomain.RawMessage) ExtractedContent {
	text, html := bodies(raw.Payload)

	out := ExtractedContent{}
	if text != nil {
		out.Text = *text
	}
	out.HTML = html

	if header, ok := raw.Header(listUnsubscribeHeader); ok {
		out.UnsubscribeLink = linkFromHeader(header)
	}
	if out.UnsubscribeLink == nil {
		body := out.Text
		if html != nil && *html != "" {
			body = *html
		}
		if body != "" {
			out.UnsubscribeLink = e.scanForLink(ctx, body)
		}
	}
	return out
}

// linkFromHeader prefers a bracketed http(s) URL over a bracketed mailto target.
func linkFromHeader(header string) *string {
	if m := headerURLPattern.FindStringSubmatch(header); m != nil {
		link := m[1]
		return &link
	}
	if m := headerMailtoPattern.FindStringSubmatch(header); m != nil {
		link := "mailto:" + m[1]
		return &link
	}
	return nil
}

const linkScanSystemPrompt = "You are a helpful assistant that finds unsubscribe links in emails. Return only the URL or None."

func (e *Extractor) scanForLink(ctx context.Context, body string) *string {
	prompt := fmt.Sprintf(`Analyze this email content and find the unsubscribe URL or email address.
The content might be in HTML format. Look for:
1. Unsubscribe links (containing words like unsubscribe, opt-out, remove)
2. Email management or preference center URLs
3. Unsubscribe email addresses

Return ONLY the full URL or mailto link if found, exactly as it appears.
Return "None" if no unsubscribe mechanism is found.
Do not include any explanation or additional text.

Email Content:
%s`, truncateRunes(body, linkScanChars))

	reply, err := e.llm.Complete(ctx, ai.Request{
		System:      linkScanSystemPrompt,
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   100,
	})
	if err != nil {
		e.log.Warn("unsubscribe link scan failed", zap.Error(err))
		return nil
	}
	return acceptLink(reply)
}

// acceptLink keeps a model reply only when it looks like a URL or mailto target.
func acceptLink(reply string) *string {
	link := strings.TrimSpace(reply)
	if strings.EqualFold(link, "none") {
		return nil
	}
	if strings.HasPrefix(link, "http") || strings.HasPrefix(link, "mailto:") {
		return &link
	}
	return nil
}

// bodies returns the first text/plain and first text/html bodies of the tree.
func bodies(root *emaildomain.MessagePart) (text, html *string) {
	if root == nil {
		return nil, nil
	}
	if len(root.Parts) == 0 {
		if root.Data == "" {
			return nil, nil
		}
		content := decodeBody(root.Data)
		if root.MimeType == "text/html" {
			return nil, &content
		}
		return &content, nil
	}

	var walk func(parts []*emaildomain.MessagePart)
	walk = func(parts []*emaildomain.MessagePart) {
		for _, p := range parts {
			switch {
			case len(p.Parts) > 0:
				walk(p.Parts)
			case p.Data == "":
			case p.MimeType == "text/plain" && text == nil:
				content := decodeBody(p.Data)
				text = &content
			case p.MimeType == "text/html" && html == nil:
				content := decodeBody(p.Data)
				html = &content
			}
		}
	}
	walk(root.Parts)
	return text, html
}

// decodeBody decodes base64url data, accepting both padded and unpadded input.
func decodeBody(data string) string {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "=")); err == nil {
		return string(b)
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
