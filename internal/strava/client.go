package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const BaseURL = "https://www.strava.com/api/v3"

// MaxPerPage is the largest page Strava serves
const MaxPerPage = 200

// ErrNotFound is returned when Strava has no such activity
var ErrNotFound = errors.New("strava: not found")

// APIError is a non-200 response from Strava
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is match a 404 against ErrNotFound
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is a Strava API client
type Client struct {
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseURL     string
}

// NewClient creates a new Strava API client
func NewClient(tokenSource oauth2.TokenSource) *Client {
	return NewClientWithHTTP(oauth2.NewClient(context.Background(), tokenSource), BaseURL)
}

// NewClientWithHTTP creates a client over an already authorized HTTP client
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(),
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// ListActivities fetches one page of the athlete's activities, newest first
func (c *Client) ListActivities(ctx context.Context, after time.Time, page, perPage int) ([]Activity, error) {
	params := url.Values{}
	if !after.IsZero() {
		params.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var activities []Activity
	if err := c.getJSON(ctx, "/athlete/activities", params, &activities); err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}

// ListRides returns up to limit recent rides of the given types, scanning
// at most scan activities. A limit of 0 keeps every ride found.
func (c *Client) ListRides(ctx context.Context, types []string, scan, limit int) ([]Activity, error) {
	if scan <= 0 {
		scan = MaxPerPage
	}

	var rides []Activity
	fetched := 0
	for page := 1; fetched < scan; page++ {
		perPage := min(scan-fetched, MaxPerPage)
		activities, err := c.ListActivities(ctx, time.Time{}, page, perPage)
		if err != nil {
			return rides, fmt.Errorf("fetching page %d: %w", page, err)
		}
		fetched += len(activities)

		for _, a := range activities {
			if a.IsRide(types) {
				rides = append(rides, a)
			}
			if limit > 0 && len(rides) == limit {
				return rides, nil
			}
		}

		if len(activities) < perPage {
			break // Last page
		}
	}
	return rides, nil
}

// GetActivity fetches the detailed summary of one activity
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*Activity, error) {
	var activity Activity
	path := fmt.Sprintf("/activities/%d", activityID)
	if err := c.getJSON(ctx, path, nil, &activity); err != nil {
		return nil, fmt.Errorf("fetching activity %d: %w", activityID, err)
	}
	return &activity, nil
}

// GetActivityStreams fetches the ride channels of an activity
func (c *Client) GetActivityStreams(ctx context.Context, activityID int64) (*Streams, error) {
	params := url.Values{}
	params.Set("keys", strings.Join(StreamKeys, ","))
	params.Set("key_by_type", "true")

	var streams Streams
	path := fmt.Sprintf("/activities/%d/streams", activityID)
	if err := c.getJSON(ctx, path, params, &streams); err != nil {
		return nil, fmt.Errorf("fetching streams for %d: %w", activityID, err)
	}
	return &streams, nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	// Update rate limiter from response headers
	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return resp, nil
}
