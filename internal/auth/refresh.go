package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// RefreshBuffer is how long before expiry a token is refreshed
const RefreshBuffer = 60 * time.Second

// ErrNoRefreshToken is returned when headless login has nothing to refresh
var ErrNoRefreshToken = errors.New("no refresh token configured")

// TokenSource wraps oauth2.TokenSource with persistence
// It automatically refreshes tokens and calls onRefresh when a new token is obtained
type TokenSource struct {
	ctx       context.Context
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource creates a new TokenSource that will refresh tokens as needed
// and call onRefresh to persist new tokens
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return NewTokenSourceContext(context.Background(), cfg, token, onRefresh)
}

// NewTokenSourceContext is NewTokenSource with the context used for refresh requests
func NewTokenSourceContext(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	if token == nil {
		token = &oauth2.Token{}
	}
	return &TokenSource{
		ctx:       ctx,
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// FromRefreshToken builds a token source from a long-lived refresh token.
// The first call to Token exchanges it for an access token.
func FromRefreshToken(ctx context.Context, cfg *oauth2.Config, refreshToken string, onRefresh func(*oauth2.Token) error) (*TokenSource, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	token := &oauth2.Token{RefreshToken: refreshToken}
	return NewTokenSourceContext(ctx, cfg, token, onRefresh), nil
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token.AccessToken != "" && time.Until(ts.token.Expiry) > RefreshBuffer {
		return ts.token, nil
	}

	// Expire the cached token so the oauth2 source always refreshes
	stale := *ts.token
	stale.Expiry = time.Now().Add(-time.Minute)

	newToken, err := ts.config.TokenSource(ts.ctx, &stale).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	// Persist the new token if callback is set
	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, fmt.Errorf("saving refreshed token: %w", err)
		}
	}

	ts.token = newToken
	return newToken, nil
}

// IsExpired checks if the current token is expired or will expire within the buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return time.Until(ts.token.Expiry) <= RefreshBuffer
}

// CurrentToken returns the current token without refreshing
func (ts *TokenSource) CurrentToken() *oauth2.Token {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}
