package ado

import (
	"context"
	"fmt"
)

// DefinitionTarget is one unit of work for definition-level operations. A
// project with no build definitions yields one target with a nil Definition
// so the run still records it.
type DefinitionTarget struct {
	Project    Project
	Definition *Definition
}

// Name identifies the target in logs and records.
func (t DefinitionTarget) Name() string {
	if t.Definition == nil {
		return t.Project.Name
	}
	return fmt.Sprintf("%s/%s", t.Project.Name, t.Definition.Name)
}

// EnumerateDefinitions produces the flattened, ordered target list:
// projects in upstream order, then each project's definitions in upstream
// order. The list is built fully before the batch loop starts.
func (c *Client) EnumerateDefinitions(ctx context.Context) ([]DefinitionTarget, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	var targets []DefinitionTarget
	for _, p := range projects {
		defs, err := c.ListBuildDefinitions(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		if len(defs) == 0 {
			targets = append(targets, DefinitionTarget{Project: p})
			continue
		}
		for i := range defs {
			targets = append(targets, DefinitionTarget{Project: p, Definition: &defs[i]})
		}
	}
	c.logger.Info("enumerated build definitions", "projects", len(projects), "targets", len(targets))
	return targets, nil
}

// RepoTarget is one repository unit of work for repository-level operations.
type RepoTarget struct {
	Project    Project
	Repository Repository
}

// Name identifies the target in logs and records.
func (t RepoTarget) Name() string {
	return fmt.Sprintf("%s/%s", t.Project.Name, t.Repository.Name)
}

// EnumerateRepositories produces the flattened project/repository list.
func (c *Client) EnumerateRepositories(ctx context.Context) ([]RepoTarget, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	var targets []RepoTarget
	for _, p := range projects {
		repos, err := c.ListRepositories(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		for _, r := range repos {
			targets = append(targets, RepoTarget{Project: p, Repository: r})
		}
	}
	c.logger.Info("enumerated repositories", "projects", len(projects), "targets", len(targets))
	return targets, nil
}
