// Package mailsource holds the credential-refresh policy shared by every mail
// source adapter: on an authorization failure, refresh once and retry once.
package mailsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	emaildomain "mailsweep/internal/email/domain"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// ErrAuth marks an authorization failure reported by an adapter that has no
// typed error of its own (IMAP).
var ErrAuth = errors.New("mail source authorization failed")

// IsAuthError reports whether err means the access token was rejected.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuth) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return true
	}
	return strings.Contains(err.Error(), "invalid_grant")
}

// Refreshable is a mail source that can renew its own credentials. Refresh
// must persist the new token before returning.
type Refreshable interface {
	emaildomain.MailSource
	Refresh(ctx context.Context) error
}

// Call runs fn; if it fails with an auth error, refresh is called once and fn
// is retried once. A second failure is returned as is.
func Call[T any](ctx context.Context, refresh func(context.Context) error, fn func(context.Context) (T, error)) (T, error) {
	out, err := fn(ctx)
	if err == nil || !IsAuthError(err) {
		return out, err
	}
	if rerr := refresh(ctx); rerr != nil {
		var zero T
		return zero, fmt.Errorf("refresh credentials after %v: %w", err, rerr)
	}
	return fn(ctx)
}

type retrying struct {
	src Refreshable
	log *zap.Logger
}

// WithAuthRetry wraps src so every call follows the single-retry policy.
func WithAuthRetry(src Refreshable, log *zap.Logger) emaildomain.MailSource {
	return &retrying{src: src, log: log}
}

func (r *retrying) refresh(ctx context.Context) error {
	r.log.Info("access token rejected, refreshing credentials")
	return r.src.Refresh(ctx)
}

func (r *retrying) ListNew(ctx context.Context, since time.Time) ([]string, error) {
	return Call(ctx, r.refresh, func(ctx context.Context) ([]string, error) {
		return r.src.ListNew(ctx, since)
	})
}

func (r *retrying) Fetch(ctx context.Context, remoteID string) (*emaildomain.RawMessage, error) {
	return Call(ctx, r.refresh, func(ctx context.Context) (*emaildomain.RawMessage, error) {
		return r.src.Fetch(ctx, remoteID)
	})
}

func (r *retrying) Archive(ctx context.Context, remoteID string) error {
	_, err := Call(ctx, r.refresh, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.src.Archive(ctx, remoteID)
	})
	return err
}

// Close releases the wrapped source when it holds a connection.
func (r *retrying) Close() error {
	if c, ok := r.src.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// RefreshToken exchanges refreshToken for a new access token and hands it to
// onUpdate before returning.
func RefreshToken(ctx context.Context, conf *oauth2.Config, refreshToken string, onUpdate emaildomain.TokenUpdateFunc) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token stored", ErrAuth)
	}
	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	if onUpdate != nil {
		if err := onUpdate(token); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}
	}
	return token, nil
}
