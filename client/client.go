package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/forcize/hylo-node/internal/domain"
)

const (
	defaultTimeout = 3 * time.Second
)

// Client is a thin HTTP client for a running node. Read results are
// cached briefly in process memory; mutations bypass the cache.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
	baseURL   string
	viewerID  int64
}

func New(baseURL string, viewerID int64) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(1*time.Minute, 5*time.Minute),
		userAgent: "hylo-client",
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		viewerID:  viewerID,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.viewerID != 0 {
		req.Header.Set("X-Viewer-Id", strconv.FormatInt(c.viewerID, 10))
	}
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) httpRequest(ctx context.Context, method, path string, body any, response any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

// IsPostVisible asks the node whether the configured viewer may see the
// post. Answers are cached for a minute.
func (c *Client) IsPostVisible(ctx context.Context, postID int64) (bool, error) {
	cacheKey := fmt.Sprintf("visible:%d:%d", c.viewerID, postID)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(bool), nil
	}

	var result struct {
		Visible bool `json:"visible"`
	}
	err := c.httpRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/visible", postID), nil, &result)
	if err != nil {
		return false, err
	}

	c.cache.Set(cacheKey, result.Visible, cache.DefaultExpiration)
	return result.Visible, nil
}

// Members lists the active memberships of the group wrapping
// (kind, dataID).
func (c *Client) Members(ctx context.Context, kind string, dataID int64) ([]domain.GroupMembership, error) {
	var members []domain.GroupMembership
	err := c.httpRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/%d/members", kind, dataID), nil, &members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

type memberMutation struct {
	UserIDs []int64        `json:"userIds"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// AddMembers upserts memberships in the group wrapping (kind, dataID).
func (c *Client) AddMembers(ctx context.Context, kind string, dataID int64, userIDs []int64, attrs map[string]any) ([]domain.GroupMembership, error) {
	var members []domain.GroupMembership
	err := c.httpRequest(ctx, http.MethodPost, fmt.Sprintf("/api/v1/groups/%s/%d/members", kind, dataID),
		memberMutation{UserIDs: userIDs, Attrs: attrs}, &members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// RemoveMembers soft-deletes memberships in the group wrapping
// (kind, dataID).
func (c *Client) RemoveMembers(ctx context.Context, kind string, dataID int64, userIDs []int64) ([]domain.GroupMembership, error) {
	var members []domain.GroupMembership
	err := c.httpRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/groups/%s/%d/members", kind, dataID),
		memberMutation{UserIDs: userIDs}, &members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// InSameGroup asks whether all listed users share at least one group of
// the given kind simultaneously.
func (c *Client) InSameGroup(ctx context.Context, kind string, userIDs []int64) (bool, error) {
	parts := make([]string, len(userIDs))
	for i, id := range userIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}

	var result struct {
		InSameGroup bool `json:"inSameGroup"`
	}
	path := fmt.Sprintf("/api/v1/groups/same-group?kind=%s&userIds=%s", kind, strings.Join(parts, ","))
	if err := c.httpRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return false, err
	}
	return result.InSameGroup, nil
}
