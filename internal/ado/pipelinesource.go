package ado

import (
	"bytes"
	"context"
	"fmt"

	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/rest"
	"gopkg.in/yaml.v3"
)

// RewritePipelineSource rewrites git-sourced repository resources in a
// pipeline YAML document to pull from GitHub through the named service
// connection. The document structure, comments and unrelated entries are
// preserved by editing the yaml.Node tree in place. Returns the rewritten
// document and whether anything changed.
func RewritePipelineSource(doc []byte, repoName, endpoint string) ([]byte, bool, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, false, fmt.Errorf("failed to parse pipeline YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return doc, false, nil
	}

	repositories := mapValue(mapValue(root.Content[0], "resources"), "repositories")
	if repositories == nil || repositories.Kind != yaml.SequenceNode {
		return doc, false, nil
	}

	changed := false
	for _, entry := range repositories.Content {
		if entry.Kind != yaml.MappingNode {
			continue
		}
		typ := mapValue(entry, "type")
		if typ == nil || typ.Value != "git" {
			continue
		}
		typ.Value = "github"
		setMapValue(entry, "name", repoName)
		setMapValue(entry, "endpoint", endpoint)
		changed = true
	}
	if !changed {
		return doc, false, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root.Content[0]); err != nil {
		return nil, false, fmt.Errorf("failed to encode pipeline YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, false, fmt.Errorf("failed to encode pipeline YAML: %w", err)
	}
	return buf.Bytes(), true, nil
}

// mapValue returns the value node for key in a mapping node, or nil.
func mapValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// setMapValue updates an existing scalar entry or appends a new one.
func setMapValue(n *yaml.Node, key, value string) {
	if v := mapValue(n, key); v != nil {
		v.SetString(value)
		return
	}
	var k, v yaml.Node
	k.SetString(key)
	v.SetString(value)
	n.Content = append(n.Content, &k, &v)
}

// PipelineSourceOp migrates YAML pipelines in every repository from the
// Azure DevOps git backend to GitHub: rewrite the resource entries, push
// the edits to a fix branch, and open a pull request.
type PipelineSourceOp struct {
	Client *Client
	// GithubConnection names the service connection migrated pipelines
	// reference.
	GithubConnection string
}

// Apply resolves one repository target into an outcome record.
func (o *PipelineSourceOp) Apply(ctx context.Context, t RepoTarget) outcome.Record {
	org := o.Client.Org()
	project := t.Project.Name
	repo := t.Repository

	paths, err := o.Client.ListYAMLFiles(ctx, project, repo.ID)
	if err != nil {
		return outcome.Failure(org, t.Name(), rest.StatusOf(err), "failed to list YAML files", err)
	}
	if len(paths) == 0 {
		return outcome.NoOp(org, t.Name(), "No YAML pipelines found")
	}

	var edits []pushEdit
	for _, path := range paths {
		content, err := o.Client.GetItemContent(ctx, project, repo.ID, path)
		if err != nil {
			return outcome.Failure(org, t.Name(), rest.StatusOf(err), fmt.Sprintf("failed to fetch %s", path), err)
		}
		rewritten, changed, err := RewritePipelineSource(content, repo.Name, o.GithubConnection)
		if err != nil {
			return outcome.Failure(org, t.Name(), 0, fmt.Sprintf("failed to rewrite %s", path), err)
		}
		if changed {
			edits = append(edits, pushEdit{Path: path, Content: string(rewritten)})
		}
	}
	if len(edits) == 0 {
		return outcome.NoOp(org, t.Name(), "no git-sourced pipeline resources")
	}

	targetRef := repo.DefaultBranch
	if targetRef == "" {
		targetRef = "refs/heads/master"
	}
	oid, err := o.Client.BranchObjectID(ctx, project, repo.ID, targetRef)
	if err != nil {
		return outcome.Failure(org, t.Name(), rest.StatusOf(err), "failed to resolve default branch", err)
	}

	branch := project + "-source-fix"
	if err := o.Client.CreatePush(ctx, project, repo.ID, branch, oid, "Updated pipeline to pull from GitHub", edits); err != nil {
		return outcome.Failure(org, t.Name(), rest.StatusOf(err), "failed to push fix branch", err)
	}
	if err := o.Client.CreatePullRequest(ctx, project, repo.ID, branch, targetRef,
		"Update source repository to GitHub",
		"Automated pull request to update the pipeline source."); err != nil {
		return outcome.Failure(org, t.Name(), rest.StatusOf(err), "failed to create pull request", err)
	}
	return outcome.Success(org, t.Name(), 0, fmt.Sprintf("updated %d pipeline file(s), branch %s", len(edits), branch))
}
