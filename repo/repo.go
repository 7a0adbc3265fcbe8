// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package repo implements the client for remote plugin repositories. It
// queries every configured repository in order, skips the ones that fail,
// and ranks the aggregated results.
package repo

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/inkpad-io/inkpad/logging"
	"github.com/inkpad-io/inkpad/metrics"
	"github.com/inkpad-io/inkpad/types"
	"github.com/inkpad-io/inkpad/util"
)

const detailsCacheSize = 128

// RemoteEntry describes a plugin listed by a remote repository.
type RemoteEntry struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Version             string    `json:"version"`
	Author              string    `json:"author,omitempty"`
	Description         string    `json:"description,omitempty"`
	DownloadURL         string    `json:"download_url"`
	Checksum            string    `json:"checksum,omitempty"`
	Size                int64     `json:"size,omitempty"`
	Category            string    `json:"category,omitempty"`
	Tags                []string  `json:"tags,omitempty"`
	License             string    `json:"license,omitempty"`
	RequiredPermissions []string  `json:"required_permissions,omitempty"`
	PublishedAt         time.Time `json:"published_at,omitempty"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
	Downloads           int64     `json:"downloads,omitempty"`
	Rating              float64   `json:"rating,omitempty"`
	Verified            bool      `json:"verified,omitempty"`
}

// Client queries an ordered list of repository base URLs.
type Client struct {
	mtx     sync.RWMutex
	repos   []string
	client  *http.Client
	details *lru.Cache[string, RemoteEntry]
	logger  logging.Logger
	metrics metrics.Metrics
}

// NewClient returns a Client seeded with the given repository base URLs.
func NewClient(repos []string) *Client {
	details, err := lru.New[string, RemoteEntry](detailsCacheSize)
	if err != nil {
		panic(err)
	}
	return &Client{
		repos:   append([]string{}, repos...),
		client:  &http.Client{Timeout: 30 * time.Second},
		details: details,
		logger:  logging.NewNoOpLogger(),
		metrics: metrics.NoOp(),
	}
}

// WithLogger sets the logger on the client.
func (c *Client) WithLogger(logger logging.Logger) *Client {
	c.logger = logger
	return c
}

// WithMetrics sets the metrics provider on the client.
func (c *Client) WithMetrics(m metrics.Metrics) *Client {
	c.metrics = m
	return c
}

// WithHTTPClient replaces the HTTP client, e.g. to trust a private CA.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// AddRepository appends base to the repository list. Adding a URL that is
// already configured has no effect.
func (c *Client) AddRepository(base string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	for _, existing := range c.repos {
		if existing == base {
			return
		}
	}
	c.repos = append(c.repos, base)
}

// RemoveRepository removes base from the repository list. Removing an
// unknown URL has no effect.
func (c *Client) RemoveRepository(base string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	for i, existing := range c.repos {
		if existing == base {
			c.repos = append(c.repos[:i:i], c.repos[i+1:]...)
			return
		}
	}
}

// Repositories returns the configured base URLs in order.
func (c *Client) Repositories() []string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return append([]string{}, c.repos...)
}

// Search queries each repository in order until max aggregated entries are
// collected, then ranks the result. Failing repositories are logged and
// skipped.
func (c *Client) Search(ctx context.Context, query, category string, max int) []RemoteEntry {
	if max <= 0 {
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	if category != "" {
		params.Set("category", category)
	}
	params.Set("limit", strconv.Itoa(max))

	var result []RemoteEntry
	for _, base := range c.Repositories() {
		if len(result) >= max {
			break
		}
		var entries []RemoteEntry
		if err := c.getJSON(ctx, base+"/search?"+params.Encode(), &entries); err != nil {
			c.skip(base, err)
			continue
		}
		result = append(result, entries...)
	}

	if len(result) > max {
		result = result[:max]
	}
	Rank(result)
	return result
}

// Categories returns the union of categories across repositories, sorted
// and deduplicated.
func (c *Client) Categories(ctx context.Context) []string {
	seen := map[string]struct{}{}
	for _, base := range c.Repositories() {
		var categories []string
		if err := c.getJSON(ctx, base+"/categories", &categories); err != nil {
			c.skip(base, err)
			continue
		}
		for _, category := range categories {
			seen[category] = struct{}{}
		}
	}
	result := make([]string, 0, len(seen))
	for category := range seen {
		result = append(result, category)
	}
	sort.Strings(result)
	return result
}

// Featured aggregates each repository's featured list, capped at max and
// ranked.
func (c *Client) Featured(ctx context.Context, max int) []RemoteEntry {
	if max <= 0 {
		return nil
	}
	var result []RemoteEntry
	for _, base := range c.Repositories() {
		if len(result) >= max {
			break
		}
		var entries []RemoteEntry
		if err := c.getJSON(ctx, base+"/featured", &entries); err != nil {
			c.skip(base, err)
			continue
		}
		result = append(result, entries...)
	}
	if len(result) > max {
		result = result[:max]
	}
	Rank(result)
	return result
}

// Details returns the full entry for pluginID from the first repository
// that knows it. Results are cached.
func (c *Client) Details(ctx context.Context, pluginID string) (RemoteEntry, error) {
	if entry, ok := c.details.Get(pluginID); ok {
		return entry, nil
	}

	for _, base := range c.Repositories() {
		var entry RemoteEntry
		if err := c.getJSON(ctx, base+"/plugin/"+url.PathEscape(pluginID), &entry); err != nil {
			c.skip(base, err)
			continue
		}
		if entry.ID == "" {
			continue
		}
		c.details.Add(pluginID, entry)
		return entry, nil
	}
	return RemoteEntry{}, types.NewError(types.NotFoundErr, "plugin %v not found in any repository", pluginID)
}

// Rank orders entries in place: verified first, then rating descending,
// then downloads descending. Ties keep their original order.
func Rank(entries []RemoteEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Verified != entries[j].Verified {
			return entries[i].Verified
		}
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].Downloads > entries[j].Downloads
	})
}

func (c *Client) skip(base string, err error) {
	c.metrics.Counter(metrics.RepoQueryFailures).Incr()
	c.logger.Warn("Skipping repository %v: %v.", base, err)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, x interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return types.NewError(types.NetworkErr, "%v", err)
	}
	defer util.Close(resp)

	if resp.StatusCode != http.StatusOK {
		return types.NewError(types.NetworkErr, "unexpected status %v", resp.StatusCode)
	}

	return util.NewJSONDecoder(resp.Body).Decode(x)
}
