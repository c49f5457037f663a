package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/virtualcloset/closet/internal/common"
)

const defaultTimeout = 30 * time.Second

// Client implements Store against a PostgREST-style row API: POST with
// merge-duplicates resolution for upserts, query-string filters for
// selects. Authentication is a bearer token attached to every request.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a remote store client.
func NewClient(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: remote base URL", common.ErrMissingConfig)
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%w: remote base URL must be http(s)", common.ErrInvalidConfig)
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: remote access token", common.ErrMissingConfig)
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// UpsertItems pushes item rows to the remote items table.
func (c *Client) UpsertItems(ctx context.Context, items []Item) error {
	return upsert(ctx, c, "items", items)
}

// ItemsUpdatedSince fetches item rows owned by the user and modified after
// the cursor.
func (c *Client) ItemsUpdatedSince(ctx context.Context, userID string, since int64) ([]Item, error) {
	return selectSince[Item](ctx, c, "items", userID, since)
}

// UpsertCapsules pushes capsule rows to the remote capsules table.
func (c *Client) UpsertCapsules(ctx context.Context, capsules []Capsule) error {
	return upsert(ctx, c, "capsules", capsules)
}

// CapsulesUpdatedSince fetches capsule rows owned by the user and modified
// after the cursor.
func (c *Client) CapsulesUpdatedSince(ctx context.Context, userID string, since int64) ([]Capsule, error) {
	return selectSince[Capsule](ctx, c, "capsules", userID, since)
}

// UpsertOutfits pushes outfit rows to the remote outfits table.
func (c *Client) UpsertOutfits(ctx context.Context, outfits []Outfit) error {
	return upsert(ctx, c, "outfits", outfits)
}

// OutfitsUpdatedSince fetches outfit rows owned by the user and modified
// after the cursor.
func (c *Client) OutfitsUpdatedSince(ctx context.Context, userID string, since int64) ([]Outfit, error) {
	return selectSince[Outfit](ctx, c, "outfits", userID, since)
}

// UpsertWearEvents pushes wear event rows to the remote wear_events table.
func (c *Client) UpsertWearEvents(ctx context.Context, events []WearEvent) error {
	return upsert(ctx, c, "wear_events", events)
}

// WearEventsUpdatedSince fetches wear event rows owned by the user and
// modified after the cursor.
func (c *Client) WearEventsUpdatedSince(ctx context.Context, userID string, since int64) ([]WearEvent, error) {
	return selectSince[WearEvent](ctx, c, "wear_events", userID, since)
}

// UpsertPrefs pushes the preferences singleton row.
func (c *Client) UpsertPrefs(ctx context.Context, prefs Prefs) error {
	return upsert(ctx, c, "user_prefs", []Prefs{prefs})
}

// PrefsUpdatedSince fetches the preferences row when it changed after the
// cursor; nil when it did not.
func (c *Client) PrefsUpdatedSince(ctx context.Context, userID string, since int64) (*Prefs, error) {
	rows, err := selectSince[Prefs](ctx, c, "user_prefs", userID, since)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func upsert[T any](ctx context.Context, c *Client, table string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode %s rows: %w", table, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+table, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s upsert request: %w", table, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	// Insert-or-replace keyed by primary key
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s upsert: %v", common.ErrRemoteUnavailable, table, err),
			Retryable: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, table)
	}
	return nil
}

func selectSince[T any](ctx context.Context, c *Client, table, userID string, since int64) ([]T, error) {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)
	query.Set("updated_at", fmt.Sprintf("gt.%d", since))
	query.Set("select", "*")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+table+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s select request: %w", table, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("%w: %s select: %v", common.ErrRemoteUnavailable, table, err),
			Retryable: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, table)
	}

	var rows []T
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s rows: %w", table, err)
	}
	return rows, nil
}

// statusError maps an HTTP failure to the right sentinel. Rate limits and
// server errors are retryable; auth and other client errors are marked
// non-retryable so a retry loop fails fast instead of repeating them.
func statusError(resp *http.Response, table string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s: %s", common.ErrUnauthorized, table, msg),
			Retryable: false,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", common.ErrRemoteRateLimit, table)
	case resp.StatusCode >= 500:
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s: status %d: %s", common.ErrRemoteUnavailable, table, resp.StatusCode, msg),
			Retryable: true,
		}
	default:
		return &common.RetryableError{
			Err:       fmt.Errorf("remote %s request failed: status %d: %s", table, resp.StatusCode, msg),
			Retryable: false,
		}
	}
}
