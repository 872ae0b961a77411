package tracker

import (
	"context"
)

// ResolveTeam returns the id of the team with the given name, creating the
// team when no existing one matches. Matching is exact and the first match
// in server order wins. Two callers racing on a new name may both create it;
// de-duplication is the server's concern.
func (c *Client) ResolveTeam(ctx context.Context, name, description string) (int64, error) {
	teams, err := c.ListTeams(ctx)
	if err != nil {
		return 0, err
	}
	for _, t := range teams {
		if t.Name == name {
			return t.ID, nil
		}
	}
	team, err := c.CreateTeam(ctx, name, description)
	if err != nil {
		return 0, err
	}
	return team.ID, nil
}

// ResolveProject returns the id of the named project within a team, creating
// the project when no existing one matches. Same matching rules as
// ResolveTeam.
func (c *Client) ResolveProject(ctx context.Context, teamID int64, name, description string) (int64, error) {
	projects, err := c.ListProjects(ctx, teamID)
	if err != nil {
		return 0, err
	}
	for _, p := range projects {
		if p.Name == name {
			return p.ID, nil
		}
	}
	project, err := c.CreateProject(ctx, teamID, name, description)
	if err != nil {
		return 0, err
	}
	return project.ID, nil
}
