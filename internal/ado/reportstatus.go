package ado

import (
	"context"
	"fmt"
	"strconv"

	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/rest"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// reportBuildStatusPath addresses the one field this operation owns inside
// the definition document.
const reportBuildStatusPath = "repository.properties.reportBuildStatus"

// SetReportBuildStatus flips reportBuildStatus in the raw definition
// document, leaving every other byte untouched. The API stores the property
// as a string in some definitions and a bool in others; the existing type
// is preserved. Returns the updated document and whether anything changed.
func SetReportBuildStatus(raw []byte, enabled bool) ([]byte, bool, error) {
	cur := gjson.GetBytes(raw, reportBuildStatusPath)
	want := strconv.FormatBool(enabled)

	if cur.Type == gjson.String {
		if cur.Str == want {
			return raw, false, nil
		}
		out, err := sjson.SetBytes(raw, reportBuildStatusPath, want)
		if err != nil {
			return nil, false, fmt.Errorf("failed to set %s: %w", reportBuildStatusPath, err)
		}
		return out, true, nil
	}

	if cur.IsBool() && cur.Bool() == enabled {
		return raw, false, nil
	}
	out, err := sjson.SetBytes(raw, reportBuildStatusPath, enabled)
	if err != nil {
		return nil, false, fmt.Errorf("failed to set %s: %w", reportBuildStatusPath, err)
	}
	return out, true, nil
}

// ReportStatusOp toggles reportBuildStatus across every build definition in
// the organization, one definition at a time.
type ReportStatusOp struct {
	Client *Client
	Enable bool
}

// Apply resolves one definition target into an outcome record. Errors stop
// at the target boundary.
func (o *ReportStatusOp) Apply(ctx context.Context, t DefinitionTarget) outcome.Record {
	org := o.Client.Org()
	if t.Definition == nil {
		return outcome.NoOp(org, t.Name(), "No build definitions found")
	}

	raw, err := o.Client.GetDefinitionRaw(ctx, t.Project.Name, t.Definition.ID)
	if err != nil {
		return outcome.Failure(org, t.Name(), rest.StatusOf(err), "failed to fetch definition", err)
	}

	updated, changed, err := SetReportBuildStatus(raw, o.Enable)
	if err != nil {
		return outcome.Failure(org, t.Name(), 0, "failed to modify definition document", err)
	}
	if !changed {
		return outcome.NoOp(org, t.Name(), fmt.Sprintf("reportBuildStatus already %t", o.Enable))
	}

	resp, err := o.Client.UpdateDefinition(ctx, t.Project.Name, t.Definition.ID, updated)
	if err != nil {
		return outcome.Failure(org, t.Name(), rest.StatusOf(err), "failed to update definition", err)
	}
	return outcome.Success(org, t.Name(), resp.StatusCode, fmt.Sprintf("reportBuildStatus set to %t", o.Enable))
}
