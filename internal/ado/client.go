package ado

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/loykin/repobatch/internal/common"
	"github.com/loykin/repobatch/internal/rest"
	"github.com/tidwall/gjson"
)

// Project is one Azure DevOps project.
type Project struct {
	ID   string
	Name string
}

// Definition is one build definition within a project.
type Definition struct {
	ID   int64
	Name string
}

// Repository is one git repository within a project.
type Repository struct {
	ID            string
	Name          string
	DefaultBranch string
	Size          int64
}

// Client wraps the Azure DevOps REST API surface this tool touches. All
// calls go through the shared rest.Client so debug tracing and the error
// taxonomy apply uniformly.
type Client struct {
	rest       *rest.Client
	base       string
	org        string
	apiVersion string
	logger     *common.Logger
}

// NewClient builds a Client for one organization with a pinned api-version.
func NewClient(rc *rest.Client, base, org, apiVersion string) *Client {
	return &Client{
		rest:       rc,
		base:       base,
		org:        org,
		apiVersion: apiVersion,
		logger:     common.GetLogger().WithComponent("ado").WithOrg(org),
	}
}

// Org returns the organization this client operates on.
func (c *Client) Org() string { return c.org }

// orgURL builds {base}/{org}/{path}?{query}&api-version={v}.
func (c *Client) orgURL(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", c.apiVersion)
	return fmt.Sprintf("%s/%s/%s?%s", c.base, url.PathEscape(c.org), path, query.Encode())
}

// projectURL builds {base}/{org}/{project}/{path}?{query}&api-version={v}.
func (c *Client) projectURL(project, path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", c.apiVersion)
	return fmt.Sprintf("%s/%s/%s/%s?%s", c.base, url.PathEscape(c.org), url.PathEscape(project), path, query.Encode())
}

// ListProjects returns all projects in the organization, in upstream order.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	resp, err := c.rest.Get(ctx, c.orgURL("_apis/projects", nil))
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	var projects []Project
	resp.JSON().Get("value").ForEach(func(_, v gjson.Result) bool {
		projects = append(projects, Project{ID: v.Get("id").String(), Name: v.Get("name").String()})
		return true
	})
	return projects, nil
}

// ListBuildDefinitions returns the build definitions of a project, in
// upstream order.
func (c *Client) ListBuildDefinitions(ctx context.Context, project string) ([]Definition, error) {
	resp, err := c.rest.Get(ctx, c.projectURL(project, "_apis/build/definitions", nil))
	if err != nil {
		return nil, fmt.Errorf("failed to list build definitions for project %s: %w", project, err)
	}
	var defs []Definition
	resp.JSON().Get("value").ForEach(func(_, v gjson.Result) bool {
		defs = append(defs, Definition{ID: v.Get("id").Int(), Name: v.Get("name").String()})
		return true
	})
	return defs, nil
}

// GetDefinitionRaw fetches the full build definition document. The raw
// bytes are kept so an update can round-trip the document with only the
// addressed field changed.
func (c *Client) GetDefinitionRaw(ctx context.Context, project string, id int64) ([]byte, error) {
	resp, err := c.rest.Get(ctx, c.projectURL(project, fmt.Sprintf("_apis/build/definitions/%d", id), nil))
	if err != nil {
		return nil, fmt.Errorf("failed to get definition %d: %w", id, err)
	}
	return resp.Body, nil
}

// UpdateDefinition PUTs the full definition document back.
func (c *Client) UpdateDefinition(ctx context.Context, project string, id int64, body []byte) (*rest.Response, error) {
	resp, err := c.rest.Call(ctx, http.MethodPut, c.projectURL(project, fmt.Sprintf("_apis/build/definitions/%d", id), nil), body)
	if err != nil {
		return resp, fmt.Errorf("failed to update definition %d: %w", id, err)
	}
	return resp, nil
}

// ListRepositories returns the git repositories of a project.
func (c *Client) ListRepositories(ctx context.Context, project string) ([]Repository, error) {
	resp, err := c.rest.Get(ctx, c.projectURL(project, "_apis/git/repositories", nil))
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for project %s: %w", project, err)
	}
	var repos []Repository
	resp.JSON().Get("value").ForEach(func(_, v gjson.Result) bool {
		repos = append(repos, Repository{
			ID:            v.Get("id").String(),
			Name:          v.Get("name").String(),
			DefaultBranch: v.Get("defaultBranch").String(),
			Size:          v.Get("size").Int(),
		})
		return true
	})
	return repos, nil
}

// LastCommitDate returns the committer date of the most recent commit, or
// empty when the repository has none.
func (c *Client) LastCommitDate(ctx context.Context, project, repoID string) (string, error) {
	q := url.Values{"$top": {"1"}}
	resp, err := c.rest.Get(ctx, c.projectURL(project, fmt.Sprintf("_apis/git/repositories/%s/commits", repoID), q))
	if err != nil {
		return "", fmt.Errorf("failed to get commits for repository %s: %w", repoID, err)
	}
	return resp.JSON().Get("value.0.committer.date").String(), nil
}

// ListYAMLFiles returns the paths of .yml/.yaml files in the repository's
// default branch.
func (c *Client) ListYAMLFiles(ctx context.Context, project, repoID string) ([]string, error) {
	q := url.Values{"scopePath": {"/"}, "recursionLevel": {"Full"}}
	resp, err := c.rest.Get(ctx, c.projectURL(project, fmt.Sprintf("_apis/git/repositories/%s/items", repoID), q))
	if err != nil {
		return nil, fmt.Errorf("failed to list items for repository %s: %w", repoID, err)
	}
	var paths []string
	resp.JSON().Get("value").ForEach(func(_, v gjson.Result) bool {
		p := v.Get("path").String()
		if hasYAMLExt(p) && !v.Get("isFolder").Bool() {
			paths = append(paths, p)
		}
		return true
	})
	return paths, nil
}

// GetItemContent fetches the content of one file.
func (c *Client) GetItemContent(ctx context.Context, project, repoID, path string) ([]byte, error) {
	q := url.Values{"path": {path}, "includeContent": {"true"}, "$format": {"json"}}
	resp, err := c.rest.Get(ctx, c.projectURL(project, fmt.Sprintf("_apis/git/repositories/%s/items", repoID), q))
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", path, err)
	}
	return []byte(resp.JSON().Get("content").String()), nil
}

// BranchObjectID resolves a branch ref (e.g. "refs/heads/main") to its
// current commit object id.
func (c *Client) BranchObjectID(ctx context.Context, project, repoID, ref string) (string, error) {
	q := url.Values{"filter": {strings.TrimPrefix(ref, "refs/")}}
	resp, err := c.rest.Get(ctx, c.projectURL(project, fmt.Sprintf("_apis/git/repositories/%s/refs", repoID), q))
	if err != nil {
		return "", fmt.Errorf("failed to resolve ref %s: %w", ref, err)
	}
	oid := resp.JSON().Get("value.0.objectId").String()
	if oid == "" {
		return "", fmt.Errorf("ref %s not found in repository %s", ref, repoID)
	}
	return oid, nil
}

// pushEdit is one file edit inside a push payload.
type pushEdit struct {
	Path    string
	Content string
}

// CreatePush creates a new branch at oldObjectID carrying one commit that
// edits the given files.
func (c *Client) CreatePush(ctx context.Context, project, repoID, branch, oldObjectID, comment string, edits []pushEdit) error {
	changes := make([]map[string]interface{}, 0, len(edits))
	for _, e := range edits {
		changes = append(changes, map[string]interface{}{
			"changeType": "edit",
			"item":       map[string]string{"path": e.Path},
			"newContent": map[string]string{"content": e.Content, "contentType": "rawtext"},
		})
	}
	body := map[string]interface{}{
		"refUpdates": []map[string]string{{
			"name":        "refs/heads/" + branch,
			"oldObjectId": oldObjectID,
		}},
		"commits": []map[string]interface{}{{
			"comment": comment,
			"changes": changes,
		}},
	}
	_, err := c.rest.Call(ctx, http.MethodPost, c.projectURL(project, fmt.Sprintf("_apis/git/repositories/%s/pushes", repoID), nil), body)
	if err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}
	return nil
}

// CreatePullRequest opens a PR from the branch into the target ref.
func (c *Client) CreatePullRequest(ctx context.Context, project, repoID, branch, targetRef, title, description string) error {
	body := map[string]interface{}{
		"sourceRefName": "refs/heads/" + branch,
		"targetRefName": targetRef,
		"title":         title,
		"description":   description,
		"reviewers":     []interface{}{},
	}
	_, err := c.rest.Call(ctx, http.MethodPost, c.projectURL(project, fmt.Sprintf("_apis/git/repositories/%s/pullrequests", repoID), nil), body)
	if err != nil {
		return fmt.Errorf("failed to create pull request for branch %s: %w", branch, err)
	}
	return nil
}

func hasYAMLExt(p string) bool {
	return strings.HasSuffix(p, ".yml") || strings.HasSuffix(p, ".yaml")
}
