package ado

import (
	"context"
	"strconv"

	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/report"
	"github.com/loykin/repobatch/internal/rest"
)

// InventoryColumns is the header of the repository inventory report.
var InventoryColumns = []string{"Project Name", "Repository Name", "Size in Bytes", "Last Commit Date"}

// InventoryOp collects size and last-commit information for every
// repository into a CSV report. Read-only: no mutating calls.
type InventoryOp struct {
	Client *Client
	Report *report.Report
}

// Apply resolves one repository target into an outcome record, appending a
// report row on success.
func (o *InventoryOp) Apply(ctx context.Context, t RepoTarget) outcome.Record {
	org := o.Client.Org()

	lastCommit, err := o.Client.LastCommitDate(ctx, t.Project.Name, t.Repository.ID)
	if err != nil {
		return outcome.Failure(org, t.Name(), rest.StatusOf(err), "failed to fetch commits", err)
	}
	if lastCommit == "" {
		lastCommit = "No commits"
	}

	o.Report.AddRow(t.Project.Name, t.Repository.Name, strconv.FormatInt(t.Repository.Size, 10), lastCommit)
	return outcome.Success(org, t.Name(), 0, "recorded")
}
