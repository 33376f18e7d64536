package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"
)

// Client fetches release metadata and zipballs from the GitHub API
type Client struct {
	BaseURL string
	Owner   string
	Repo    string
	Token   string

	httpClient *http.Client
}

// NewClient create new instance
func NewClient(baseURL, owner, repo, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Owner:   owner,
		Repo:    repo,
		Token:   token,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// ListReleases fetches the full releases listing, newest first as the API returns it
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.BaseURL, c.Owner, c.Repo)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch releases: %w", err)
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode releases: %w", err)
	}

	return releases, nil
}

// DownloadZipball fetches the source zipball of a release into memory
func (c *Client) DownloadZipball(ctx context.Context, rel Release) ([]byte, error) {
	if rel.ZipballURL == "" {
		return nil, fmt.Errorf("release %s has no zipball url", rel.TagName)
	}

	body, err := c.get(ctx, rel.ZipballURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download zipball for %s: %w", rel.TagName, err)
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	return ioutil.ReadAll(resp.Body)
}
