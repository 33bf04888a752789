package github

import (
	"context"
	"strconv"

	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/report"
	"github.com/loykin/repobatch/internal/rest"
)

// InventoryColumns is the header of the repository inventory report.
var InventoryColumns = []string{"Repository Name", "Size in KB", "Last Commit Date"}

// InventoryOp collects size and last-commit information for every
// repository of the owner into a CSV report. Read-only: no mutating calls.
type InventoryOp struct {
	Client *Client
	Report *report.Report
}

// Apply resolves one repository into an outcome record, appending a report
// row on success.
func (o *InventoryOp) Apply(ctx context.Context, r Repo) outcome.Record {
	owner := o.Client.Owner()

	lastCommit, err := o.Client.LastCommitDate(ctx, owner, r.Name)
	if err != nil {
		return outcome.Failure(owner, r.Name, rest.StatusOf(err), "failed to fetch commits", err)
	}
	if lastCommit == "" {
		lastCommit = "No commits"
	}

	o.Report.AddRow(r.Name, strconv.FormatInt(r.Size, 10), lastCommit)
	return outcome.Success(owner, r.Name, 0, "recorded")
}
