package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenServer mimics the Strava token endpoint
func tokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			assert.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
			fmt.Fprint(w, `{"access_token":"access-2","refresh_token":"refresh-2","token_type":"Bearer","expires_in":21600}`)
		case "authorization_code":
			assert.Equal(t, "the-code", r.Form.Get("code"))
			fmt.Fprint(w, `{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":21600,"athlete":{"id":1234}}`)
		default:
			http.Error(w, "unsupported", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL string) *oauth2.Config {
	return NewOAuthConfig(Config{ClientID: "id", ClientSecret: "secret", RedirectURL: RedirectURL(), TokenURL: tokenURL})
}

func TestExtractAthleteID(t *testing.T) {
	token := (&oauth2.Token{AccessToken: "x"}).WithExtra(map[string]interface{}{
		"athlete": map[string]interface{}{"id": float64(987)},
	})
	assert.Equal(t, int64(987), ExtractAthleteID(token))
	assert.Equal(t, int64(0), ExtractAthleteID(&oauth2.Token{}))
	assert.Equal(t, int64(0), ExtractAthleteID(nil))
}

func TestExchange(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)

	result, err := Exchange(context.Background(), testConfig(srv.URL), "the-code")
	require.NoError(t, err)

	assert.Equal(t, "access-1", result.Token.AccessToken)
	assert.Equal(t, "refresh-1", result.Token.RefreshToken)
	assert.Equal(t, int64(1234), result.AthleteID)
}

func TestTokenSourceReturnsValidToken(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)

	token := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)}
	ts := NewTokenSource(testConfig(srv.URL), token, nil)

	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.False(t, ts.IsExpired())
}

func TestTokenSourceRefreshesAndPersists(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)

	var saved *oauth2.Token
	token := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(30 * time.Second)}
	ts := NewTokenSource(testConfig(srv.URL), token, func(tok *oauth2.Token) error {
		saved = tok
		return nil
	})

	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)
	require.NotNil(t, saved)
	assert.Equal(t, "refresh-2", saved.RefreshToken)
	assert.Equal(t, "access-2", ts.CurrentToken().AccessToken)
}

func TestTokenSourcePersistFailure(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)

	token := &oauth2.Token{RefreshToken: "refresh-1"}
	ts := NewTokenSource(testConfig(srv.URL), token, func(*oauth2.Token) error {
		return fmt.Errorf("disk full")
	})

	_, err := ts.Token()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "", ts.CurrentToken().AccessToken)
}

func TestFromRefreshToken(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)

	_, err := FromRefreshToken(context.Background(), testConfig(srv.URL), "", nil)
	assert.ErrorIs(t, err, ErrNoRefreshToken)

	ts, err := FromRefreshToken(context.Background(), testConfig(srv.URL), "refresh-1", nil)
	require.NoError(t, err)

	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  error
		status   int
	}{
		{"success", "?state=abc&code=xyz", "xyz", nil, http.StatusOK},
		{"state mismatch", "?state=evil&code=xyz", "", ErrStateMismatch, http.StatusBadRequest},
		{"missing code", "?state=abc", "", ErrNoCode, http.StatusBadRequest},
		{"denied", "?state=abc&error=access_denied", "", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := make(chan string, 1)
			errs := make(chan error, 1)
			rec := httptest.NewRecorder()

			callbackHandler("abc", codes, errs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, <-codes)
				return
			}
			require.Len(t, errs, 1)
			err := <-errs
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
