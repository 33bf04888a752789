package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/loykin/repobatch/internal/common"
	"github.com/loykin/repobatch/internal/rest"
	"github.com/tidwall/gjson"
)

// AcceptHeader pins the GitHub REST API media type.
const AcceptHeader = "application/vnd.github+json"

// Repo is one repository as returned by the org listing.
type Repo struct {
	Name string
	Size int64
}

// Client wraps the GitHub REST API surface this tool touches.
type Client struct {
	rest   *rest.Client
	base   string
	owner  string
	logger *common.Logger
}

// NewClient builds a Client for one owner (user or organization).
func NewClient(rc *rest.Client, base, owner string) *Client {
	return &Client{
		rest:   rc,
		base:   base,
		owner:  owner,
		logger: common.GetLogger().WithComponent("github").WithOrg(owner),
	}
}

// Owner returns the configured default owner.
func (c *Client) Owner() string { return c.owner }

func (c *Client) repoURL(owner, repo, path string) string {
	u := fmt.Sprintf("%s/repos/%s/%s", c.base, url.PathEscape(owner), url.PathEscape(repo))
	if path != "" {
		u += "/" + path
	}
	return u
}

func (c *Client) orgURL(path string) string {
	return fmt.Sprintf("%s/orgs/%s/%s", c.base, url.PathEscape(c.owner), path)
}

// GetTopics fetches the current topics of a repository.
func (c *Client) GetTopics(ctx context.Context, owner, repo string) ([]string, error) {
	resp, err := c.rest.Get(ctx, c.repoURL(owner, repo, "topics"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch topics for %s/%s: %w", owner, repo, err)
	}
	var topics []string
	resp.JSON().Get("names").ForEach(func(_, v gjson.Result) bool {
		topics = append(topics, v.String())
		return true
	})
	return topics, nil
}

// SetTopics replaces the repository's topics with the given list.
func (c *Client) SetTopics(ctx context.Context, owner, repo string, topics []string) (*rest.Response, error) {
	body := map[string]interface{}{"names": topics}
	resp, err := c.rest.Call(ctx, http.MethodPut, c.repoURL(owner, repo, "topics"), body)
	if err != nil {
		return resp, fmt.Errorf("failed to update topics for %s/%s: %w", owner, repo, err)
	}
	return resp, nil
}

// GetRepoID resolves a repository's numeric id.
func (c *Client) GetRepoID(ctx context.Context, owner, repo string) (int64, error) {
	resp, err := c.rest.Get(ctx, c.repoURL(owner, repo, ""))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, repo, err)
	}
	id := resp.JSON().Get("id").Int()
	if id == 0 {
		return 0, fmt.Errorf("repository %s/%s has no id in response", owner, repo)
	}
	return id, nil
}

// FindSecurityConfiguration resolves a code security configuration id by
// its display name.
func (c *Client) FindSecurityConfiguration(ctx context.Context, name string) (int64, error) {
	resp, err := c.rest.Get(ctx, c.orgURL("code-security/configurations"))
	if err != nil {
		return 0, fmt.Errorf("failed to list code security configurations: %w", err)
	}
	var id int64
	resp.JSON().ForEach(func(_, v gjson.Result) bool {
		if v.Get("name").String() == name {
			id = v.Get("id").Int()
			return false
		}
		return true
	})
	if id == 0 {
		return 0, fmt.Errorf("code security configuration %q not found for %s", name, c.owner)
	}
	return id, nil
}

// AttachSecurityConfiguration attaches the configuration to the given
// repository ids in one call.
func (c *Client) AttachSecurityConfiguration(ctx context.Context, configID int64, repoIDs []int64) (*rest.Response, error) {
	body := map[string]interface{}{
		"scope":                   "selected",
		"selected_repository_ids": repoIDs,
	}
	u := c.orgURL(fmt.Sprintf("code-security/configurations/%d/attach", configID))
	resp, err := c.rest.Call(ctx, http.MethodPost, u, body)
	if err != nil {
		return resp, fmt.Errorf("failed to attach configuration %d: %w", configID, err)
	}
	return resp, nil
}

// ListOrgRepos returns the owner's repositories in upstream order.
func (c *Client) ListOrgRepos(ctx context.Context) ([]Repo, error) {
	resp, err := c.rest.Get(ctx, c.orgURL("repos"))
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", c.owner, err)
	}
	var repos []Repo
	resp.JSON().ForEach(func(_, v gjson.Result) bool {
		repos = append(repos, Repo{Name: v.Get("name").String(), Size: v.Get("size").Int()})
		return true
	})
	c.logger.Info("enumerated repositories", "targets", len(repos))
	return repos, nil
}

// LastCommitDate returns the committer date of the most recent commit, or
// empty when the repository has none.
func (c *Client) LastCommitDate(ctx context.Context, owner, repo string) (string, error) {
	resp, err := c.rest.Get(ctx, c.repoURL(owner, repo, "commits?per_page=1"))
	if err != nil {
		return "", fmt.Errorf("failed to fetch commits for %s/%s: %w", owner, repo, err)
	}
	return resp.JSON().Get("0.commit.committer.date").String(), nil
}
