package tracker

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gcharanteja/unilogger/domain"
)

// DashboardOverview summarizes everything visible to the caller.
func (c *Client) DashboardOverview(ctx context.Context) (*domain.DashboardOverview, error) {
	var overview domain.DashboardOverview
	if err := c.get(ctx, "/dashboard/overview", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// ProjectDashboard summarizes one project.
func (c *Client) ProjectDashboard(ctx context.Context, projectID int64) (*domain.ProjectDashboard, error) {
	var dash domain.ProjectDashboard
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/dashboard", projectID), nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// CompareRuns compares runs of one project side by side.
func (c *Client) CompareRuns(ctx context.Context, projectID int64, runIDs []int64) (*domain.RunComparison, error) {
	ids := make([]string, len(runIDs))
	for i, id := range runIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	params := url.Values{"run_ids": {strings.Join(ids, ",")}}
	var cmp domain.RunComparison
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/runs/compare", projectID), params, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// Timeseries returns the step-ordered series of one metric within a run.
func (c *Client) Timeseries(ctx context.Context, runID int64, metricName string) (*domain.TimeseriesPlot, error) {
	params := url.Values{"metric_name": {metricName}}
	var plot domain.TimeseriesPlot
	if err := c.get(ctx, fmt.Sprintf("/runs/%d/visualizations/timeseries", runID), params, &plot); err != nil {
		return nil, err
	}
	return &plot, nil
}

// Multiplot returns every numeric series of a run keyed by metric name.
func (c *Client) Multiplot(ctx context.Context, runID int64) (*domain.MultiPlot, error) {
	var plot domain.MultiPlot
	if err := c.get(ctx, fmt.Sprintf("/runs/%d/visualizations/multiplot", runID), nil, &plot); err != nil {
		return nil, err
	}
	return &plot, nil
}

func limitParams(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

// AuditLogs returns recent audit entries, newest first. A non-positive limit
// uses the server default.
func (c *Client) AuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	if err := c.get(ctx, "/audit-logs", limitParams(limit), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// TeamAuditLogs returns a team's audit entries, newest first.
func (c *Client) TeamAuditLogs(ctx context.Context, teamID int64, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	if err := c.get(ctx, fmt.Sprintf("/teams/%d/audit-logs", teamID), limitParams(limit), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ProjectAuditLogs returns a project's audit entries, newest first.
func (c *Client) ProjectAuditLogs(ctx context.Context, projectID int64, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/audit-logs", projectID), limitParams(limit), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateRole creates a named permission set within a team.
func (c *Client) CreateRole(ctx context.Context, teamID int64, req domain.CreateRoleRequest) (*domain.Role, error) {
	var role domain.Role
	if err := c.post(ctx, fmt.Sprintf("/teams/%d/roles", teamID), req, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles lists a team's roles.
func (c *Client) ListRoles(ctx context.Context, teamID int64) ([]domain.Role, error) {
	var roles []domain.Role
	if err := c.get(ctx, fmt.Sprintf("/teams/%d/roles", teamID), nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// AssignRole binds a role to a team member.
func (c *Client) AssignRole(ctx context.Context, teamID, userID, roleID int64) (*domain.RoleAssignment, error) {
	var assignment domain.RoleAssignment
	path := fmt.Sprintf("/teams/%d/members/%d/role/%d", teamID, userID, roleID)
	if err := c.post(ctx, path, nil, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}
