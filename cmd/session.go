package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/oauth2"

	"ridedash/internal/auth"
	"ridedash/internal/config"
	"ridedash/internal/store"
	"ridedash/internal/strava"
)

// connect returns a Strava client authorized for the stored athlete.
// Stored tokens are tried first, then a configured refresh token, and
// finally the browser flow.
func connect(ctx context.Context, out io.Writer, cfg *config.Config, db *store.DB) (*strava.Client, error) {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  auth.RedirectURL(),
	})
	persist := func(t *oauth2.Token) error {
		return db.UpdateTokens(t.AccessToken, t.RefreshToken, t.Expiry)
	}

	stored, err := db.GetAuth()
	switch {
	case err == nil:
		ts := auth.NewTokenSourceContext(ctx, oauthCfg, &oauth2.Token{
			AccessToken:  stored.AccessToken,
			RefreshToken: stored.RefreshToken,
			Expiry:       stored.ExpiresAt,
		}, persist)
		if _, err := ts.Token(); err == nil {
			return strava.NewClient(ts), nil
		}
		fmt.Fprintln(out, warn("Stored Strava token is invalid or expired."))
	case !errors.Is(err, store.ErrNoAuth):
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	if cfg.Strava.RefreshToken != "" {
		ts, err := auth.FromRefreshToken(ctx, oauthCfg, cfg.Strava.RefreshToken, persist)
		if err == nil {
			if _, err = ts.Token(); err == nil {
				return strava.NewClient(ts), nil
			}
		}
		fmt.Fprintln(out, warn(fmt.Sprintf("Configured refresh token was rejected: %v", err)))
	}

	result, err := auth.Authenticate(ctx, oauthCfg, out)
	if err != nil {
		return nil, fmt.Errorf("authentication: %w", err)
	}
	if err := db.SaveAuth(&store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}
	fmt.Fprintf(out, "\nAuthenticated as athlete %d\n", result.AthleteID)

	ts := auth.NewTokenSourceContext(ctx, oauthCfg, result.Token, persist)
	return strava.NewClient(ts), nil
}
