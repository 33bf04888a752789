package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/loykin/repobatch/internal/csvsource"
	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/rest"
)

// SecurityConfigOp attaches a code security configuration to repositories
// listed in a CSV file. Targets arrive pre-chunked: one chunk is one attach
// call and one outcome record.
type SecurityConfigOp struct {
	Client   *Client
	ConfigID int64
}

// Apply resolves one chunk of CSV rows into an outcome record. Repository
// id resolution failures fail the whole chunk; the run moves on to the next
// chunk.
func (o *SecurityConfigOp) Apply(ctx context.Context, rows []csvsource.Row) outcome.Record {
	owner := o.Client.Owner()
	target := chunkName(rows)

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		id, err := o.Client.GetRepoID(ctx, owner, row.Repo)
		if err != nil {
			return outcome.Failure(owner, target, rest.StatusOf(err),
				fmt.Sprintf("failed to resolve repository %s", row.Repo), err)
		}
		ids = append(ids, id)
	}

	resp, err := o.Client.AttachSecurityConfiguration(ctx, o.ConfigID, ids)
	if err != nil {
		return outcome.Failure(owner, target, rest.StatusOf(err), "failed to attach configuration", err)
	}
	return outcome.Success(owner, target, resp.StatusCode,
		fmt.Sprintf("attached configuration %d to %d repositories", o.ConfigID, len(ids)))
}

// chunkName labels a chunk by its repository names.
func chunkName(rows []csvsource.Row) string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Repo)
	}
	return strings.Join(names, ",")
}
