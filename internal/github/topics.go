package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/loykin/repobatch/internal/csvsource"
	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/rest"
)

// TopicsOp adds topics to repositories listed in a CSV file. Existing
// topics are kept: the update sends the union of current and requested.
type TopicsOp struct {
	Client *Client
	// DefaultOwner fills in for rows that leave the owner column empty.
	DefaultOwner string
}

// Apply resolves one CSV row into an outcome record.
func (o *TopicsOp) Apply(ctx context.Context, row csvsource.Row) outcome.Record {
	owner := row.Owner
	if owner == "" {
		owner = o.DefaultOwner
	}
	target := owner + "/" + row.Repo

	if !row.HasMutation() {
		return outcome.NoOp(owner, target, "no topics requested")
	}

	current, err := o.Client.GetTopics(ctx, owner, row.Repo)
	if err != nil {
		return outcome.Failure(owner, target, rest.StatusOf(err), "failed to fetch topics", err)
	}

	merged, added := mergeTopics(current, row.Topics)
	if len(added) == 0 {
		return outcome.NoOp(owner, target, "all topics already present")
	}

	resp, err := o.Client.SetTopics(ctx, owner, row.Repo, merged)
	if err != nil {
		return outcome.Failure(owner, target, rest.StatusOf(err), "failed to update topics", err)
	}
	return outcome.Success(owner, target, resp.StatusCode,
		fmt.Sprintf("added topics: %s", strings.Join(added, ", ")))
}

// mergeTopics unions requested into current, preserving the order of both
// and reporting which topics were actually new.
func mergeTopics(current, requested []string) (merged, added []string) {
	seen := make(map[string]bool, len(current))
	merged = append(merged, current...)
	for _, t := range current {
		seen[t] = true
	}
	for _, t := range requested {
		if seen[t] {
			continue
		}
		seen[t] = true
		merged = append(merged, t)
		added = append(added, t)
	}
	return merged, added
}
