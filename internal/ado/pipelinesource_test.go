package ado

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const pipelineYAML = `trigger:
  - main
resources:
  repositories:
    - repository: templates
      type: git
      name: old-project/old-repo
      ref: refs/heads/main
    - repository: external
      type: github
      name: acme/shared
      endpoint: existing-connection
pool:
  vmImage: ubuntu-latest
`

func TestRewritePipelineSource_RewritesGitResources(t *testing.T) {
	out, changed, err := RewritePipelineSource([]byte(pipelineYAML), "my-repo", "github-conn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change")
	}

	var doc struct {
		Resources struct {
			Repositories []struct {
				Repository string `yaml:"repository"`
				Type       string `yaml:"type"`
				Name       string `yaml:"name"`
				Endpoint   string `yaml:"endpoint"`
				Ref        string `yaml:"ref"`
			} `yaml:"repositories"`
		} `yaml:"resources"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("rewritten document is not valid YAML: %v\n%s", err, out)
	}
	repos := doc.Resources.Repositories
	if len(repos) != 2 {
		t.Fatalf("expected 2 repository resources, got %d", len(repos))
	}
	if repos[0].Type != "github" || repos[0].Name != "my-repo" || repos[0].Endpoint != "github-conn" {
		t.Fatalf("git resource not rewritten: %+v", repos[0])
	}
	if repos[0].Ref != "refs/heads/main" {
		t.Fatalf("unrelated key was disturbed: %+v", repos[0])
	}
	if repos[1].Endpoint != "existing-connection" || repos[1].Name != "acme/shared" {
		t.Fatalf("already-github resource was modified: %+v", repos[1])
	}
	if !strings.Contains(string(out), "vmImage: ubuntu-latest") {
		t.Fatalf("unrelated sections dropped:\n%s", out)
	}
}

func TestRewritePipelineSource_NoGitResources(t *testing.T) {
	doc := "trigger:\n  - main\npool:\n  vmImage: ubuntu-latest\n"
	out, changed, err := RewritePipelineSource([]byte(doc), "repo", "conn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatalf("expected no change")
	}
	if string(out) != doc {
		t.Fatalf("document without git resources was modified")
	}
}

func TestRewritePipelineSource_EmptyDocument(t *testing.T) {
	_, changed, err := RewritePipelineSource(nil, "repo", "conn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatalf("expected no change for empty document")
	}
}

func TestRewritePipelineSource_InvalidYAML(t *testing.T) {
	if _, _, err := RewritePipelineSource([]byte("key: [unclosed"), "repo", "conn"); err == nil {
		t.Fatalf("expected error for invalid YAML")
	}
}
